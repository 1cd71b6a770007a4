package export

import (
	"ripstool/rips"
)

// ServiceRow is a denormalized Parquet row for one RIPS service line: one
// record of any of the six service kinds, tagged with its invoice and
// patient.
//
//   - kind, num_factura and the patient columns repeat heavily and
//     dictionary-encode to almost nothing.
//
//   - Columns that only some kinds carry are optional. Urgencias and
//     hospitalizacion have no vr_servicio, so IS NULL on that column
//     selects exactly those lines.
//
//   - Sort by (num_factura, kind, consecutivo) for row-group skip on the
//     usual per-invoice reconciliation queries.
type ServiceRow struct {
	NumFactura             string `parquet:"num_factura"`
	NumDocumentoIdObligado string `parquet:"num_documento_id_obligado"`
	Kind                   string `parquet:"kind"` // consultas | procedimientos | urgencias | ...
	Consecutivo            int32  `parquet:"consecutivo"`

	NumDocIdPaciente      string `parquet:"num_doc_id_paciente"`
	TipoDocumentoPaciente string `parquet:"tipo_documento_paciente"`

	CodPrestador string  `parquet:"cod_prestador"`
	Fecha        string  `parquet:"fecha"` // atención, dispensación or suministro
	FechaEgreso  *string `parquet:"fecha_egreso,optional"`

	// codConsulta, codProcedimiento or codTecnologiaSalud
	Codigo                  *string `parquet:"codigo,optional"`
	Descripcion             *string `parquet:"descripcion,optional"`
	CodDiagnosticoPrincipal *string `parquet:"cod_diagnostico_principal,optional"`
	NumAutorizacion         *string `parquet:"num_autorizacion,optional"`

	Cantidad           *float64 `parquet:"cantidad,optional"`
	VrUnitario         *float64 `parquet:"vr_unitario,optional"`
	VrServicio         *float64 `parquet:"vr_servicio,optional"`
	ConceptoRecaudo    *string  `parquet:"concepto_recaudo,optional"`
	ValorPagoModerador *float64 `parquet:"valor_pago_moderador,optional"`
}

// ServiceRows flattens every service line of doc, usuario by usuario and
// kind by kind in document order.
func ServiceRows(doc rips.Document) []ServiceRow {
	var rows []ServiceRow
	for _, u := range doc.Usuarios {
		base := ServiceRow{
			NumFactura:             doc.NumFactura,
			NumDocumentoIdObligado: doc.NumDocumentoIdObligado,
			NumDocIdPaciente:       u.NumDocumentoIdentificacion,
			TipoDocumentoPaciente:  string(u.TipoDocumentoIdentificacion),
		}
		s := u.Servicios

		for _, c := range s.Consultas {
			r := base
			r.Kind = rips.KindConsultas.String()
			r.Consecutivo = int32(c.Consecutivo)
			r.CodPrestador = c.CodPrestador
			r.Fecha = c.FechaInicioAtencion
			r.Codigo = str(c.CodConsulta)
			r.CodDiagnosticoPrincipal = str(c.CodDiagnosticoPrincipal)
			r.NumAutorizacion = opt(c.NumAutorizacion)
			r.VrServicio = num(c.VrServicio)
			r.ConceptoRecaudo = str(c.ConceptoRecaudo)
			r.ValorPagoModerador = num(c.ValorPagoModerador)
			rows = append(rows, r)
		}
		for _, p := range s.Procedimientos {
			r := base
			r.Kind = rips.KindProcedimientos.String()
			r.Consecutivo = int32(p.Consecutivo)
			r.CodPrestador = p.CodPrestador
			r.Fecha = p.FechaInicioAtencion
			r.Codigo = str(p.CodProcedimiento)
			r.CodDiagnosticoPrincipal = str(p.CodDiagnosticoPrincipal)
			r.NumAutorizacion = opt(p.NumAutorizacion)
			r.VrServicio = num(p.VrServicio)
			r.ConceptoRecaudo = str(p.ConceptoRecaudo)
			r.ValorPagoModerador = num(p.ValorPagoModerador)
			rows = append(rows, r)
		}
		for _, e := range s.Urgencias {
			r := base
			r.Kind = rips.KindUrgencias.String()
			r.Consecutivo = int32(e.Consecutivo)
			r.CodPrestador = e.CodPrestador
			r.Fecha = e.FechaInicioAtencion
			r.FechaEgreso = str(e.FechaEgreso)
			r.CodDiagnosticoPrincipal = str(e.CodDiagnosticoPrincipal)
			rows = append(rows, r)
		}
		for _, h := range s.Hospitalizacion {
			r := base
			r.Kind = rips.KindHospitalizacion.String()
			r.Consecutivo = int32(h.Consecutivo)
			r.CodPrestador = h.CodPrestador
			r.Fecha = h.FechaInicioAtencion
			r.FechaEgreso = str(h.FechaEgreso)
			r.CodDiagnosticoPrincipal = str(h.CodDiagnosticoPrincipal)
			r.NumAutorizacion = opt(h.NumAutorizacion)
			rows = append(rows, r)
		}
		for _, m := range s.Medicamentos {
			r := base
			r.Kind = rips.KindMedicamentos.String()
			r.Consecutivo = int32(m.Consecutivo)
			r.CodPrestador = m.CodPrestador
			r.Fecha = m.FechaDispensAdmon
			r.Codigo = opt(m.CodTecnologiaSalud)
			r.Descripcion = opt(m.NomTecnologiaSalud)
			r.CodDiagnosticoPrincipal = str(m.CodDiagnosticoPrincipal)
			r.NumAutorizacion = opt(m.NumAutorizacion)
			r.Cantidad = num(m.CantidadMedicamento)
			r.VrUnitario = num(m.VrUnitMedicamento)
			r.VrServicio = num(m.VrServicio)
			r.ConceptoRecaudo = str(m.ConceptoRecaudo)
			r.ValorPagoModerador = num(m.ValorPagoModerador)
			rows = append(rows, r)
		}
		for _, o := range s.OtrosServicios {
			r := base
			r.Kind = rips.KindOtrosServicios.String()
			r.Consecutivo = int32(o.Consecutivo)
			r.CodPrestador = o.CodPrestador
			r.Fecha = o.FechaSuministroTecnologia
			r.Codigo = opt(o.CodTecnologiaSalud)
			r.Descripcion = opt(o.NomTecnologiaSalud)
			r.NumAutorizacion = opt(o.NumAutorizacion)
			r.Cantidad = num(o.CantidadOS)
			r.VrUnitario = num(o.VrUnitOS)
			r.VrServicio = num(o.VrServicio)
			r.ConceptoRecaudo = str(o.ConceptoRecaudo)
			r.ValorPagoModerador = num(o.ValorPagoModerador)
			rows = append(rows, r)
		}
	}
	return rows
}

func str(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func opt(o rips.Optional) *string {
	if !o.Valid {
		return nil
	}
	v := o.Value
	return &v
}

func num(f float64) *float64 {
	return &f
}
