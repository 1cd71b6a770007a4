package rips

import (
	"regexp"
	"strconv"
	"strings"
)

// column binds one positional field of an entity file to a record field.
// The same ordered table drives parsing and flattening, so the two
// directions cannot drift apart.
type column[T any] struct {
	name string
	get  func(*T) string
	set  func(r *T, raw string, line int) error
}

func names[T any](cols []column[T]) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.name
	}
	return out
}

func textCol[T any](name string, field func(*T) *string) column[T] {
	return column[T]{
		name: name,
		get:  func(r *T) string { return *field(r) },
		set: func(r *T, raw string, _ int) error {
			*field(r) = strings.TrimSpace(raw)
			return nil
		},
	}
}

func docTypeCol[T any](name string, field func(*T) *DocumentType) column[T] {
	return column[T]{
		name: name,
		get:  func(r *T) string { return string(*field(r)) },
		set: func(r *T, raw string, _ int) error {
			*field(r) = DocumentType(strings.TrimSpace(raw))
			return nil
		},
	}
}

func optionalCol[T any](name string, field func(*T) *Optional) column[T] {
	return column[T]{
		name: name,
		get:  func(r *T) string { return field(r).String() },
		set: func(r *T, raw string, _ int) error {
			*field(r) = OptionalOf(raw)
			return nil
		},
	}
}

func intCol[T any](name string, field func(*T) *int) column[T] {
	return column[T]{
		name: name,
		get:  func(r *T) string { return strconv.Itoa(*field(r)) },
		set: func(r *T, raw string, _ int) error {
			*field(r) = parseIntOr(raw, 0)
			return nil
		},
	}
}

// consecutivoCol falls back to the 1-based line number when the value is
// missing or zero.
func consecutivoCol[T any](field func(*T) *int) column[T] {
	return column[T]{
		name: "consecutivo",
		get:  func(r *T) string { return strconv.Itoa(*field(r)) },
		set: func(r *T, raw string, line int) error {
			*field(r) = parseIntOr(raw, line)
			return nil
		},
	}
}

func floatCol[T any](name string, field func(*T) *float64) column[T] {
	return column[T]{
		name: name,
		get:  func(r *T) string { return formatFloat(*field(r)) },
		set: func(r *T, raw string, _ int) error {
			*field(r) = parseFloatOr(raw, 0)
			return nil
		},
	}
}

func dateCol[T any](name string, field func(*T) *string) column[T] {
	return column[T]{
		name: name,
		get:  func(r *T) string { return *field(r) },
		set: func(r *T, raw string, _ int) error {
			v, err := ToISODate(raw)
			if err != nil {
				return err
			}
			*field(r) = v
			return nil
		},
	}
}

func dateTimeCol[T any](name string, field func(*T) *string) column[T] {
	return column[T]{
		name: name,
		get:  func(r *T) string { return *field(r) },
		set: func(r *T, raw string, _ int) error {
			v, err := ToISODateTime(raw)
			if err != nil {
				return err
			}
			*field(r) = v
			return nil
		},
	}
}

var (
	intPrefixRe   = regexp.MustCompile(`^[+-]?\d+`)
	floatPrefixRe = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
)

// parseIntOr parses the leading integer of s. Unparseable and zero values
// both yield def.
func parseIntOr(s string, def int) int {
	m := intPrefixRe.FindString(strings.TrimSpace(s))
	if m == "" {
		return def
	}
	n, err := strconv.Atoi(m)
	if err != nil || n == 0 {
		return def
	}
	return n
}

// parseFloatOr parses the leading decimal number of s, so "1500abc" is 1500.
func parseFloatOr(s string, def float64) float64 {
	m := floatPrefixRe.FindString(strings.TrimSpace(s))
	if m == "" {
		return def
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil || f == 0 {
		return def
	}
	return f
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

var usuarioColumns = []column[Usuario]{
	docTypeCol("tipoDocumentoIdentificacion", func(u *Usuario) *DocumentType { return &u.TipoDocumentoIdentificacion }),
	textCol("numDocumentoIdentificacion", func(u *Usuario) *string { return &u.NumDocumentoIdentificacion }),
	textCol("tipoUsuario", func(u *Usuario) *string { return &u.TipoUsuario }),
	dateCol("fechaNacimiento", func(u *Usuario) *string { return &u.FechaNacimiento }),
	textCol("codSexo", func(u *Usuario) *string { return &u.CodSexo }),
	textCol("codPaisResidencia", func(u *Usuario) *string { return &u.CodPaisResidencia }),
	textCol("codMunicipioResidencia", func(u *Usuario) *string { return &u.CodMunicipioResidencia }),
	textCol("codZonaTerritorialResidencia", func(u *Usuario) *string { return &u.CodZonaTerritorialResidencia }),
	textCol("incapacidad", func(u *Usuario) *string { return &u.Incapacidad }),
	textCol("codPaisOrigen", func(u *Usuario) *string { return &u.CodPaisOrigen }),
	consecutivoCol(func(u *Usuario) *int { return &u.Consecutivo }),
}

var consultaColumns = []column[Consulta]{
	textCol("codPrestador", func(c *Consulta) *string { return &c.CodPrestador }),
	dateTimeCol("fechaInicioAtencion", func(c *Consulta) *string { return &c.FechaInicioAtencion }),
	optionalCol("numAutorizacion", func(c *Consulta) *Optional { return &c.NumAutorizacion }),
	textCol("codConsulta", func(c *Consulta) *string { return &c.CodConsulta }),
	textCol("modalidadGrupoServicioTecSal", func(c *Consulta) *string { return &c.ModalidadGrupoServicioTecSal }),
	textCol("grupoServicios", func(c *Consulta) *string { return &c.GrupoServicios }),
	intCol("codServicio", func(c *Consulta) *int { return &c.CodServicio }),
	textCol("finalidadTecnologiaSalud", func(c *Consulta) *string { return &c.FinalidadTecnologiaSalud }),
	textCol("causaMotivoAtencion", func(c *Consulta) *string { return &c.CausaMotivoAtencion }),
	textCol("codDiagnosticoPrincipal", func(c *Consulta) *string { return &c.CodDiagnosticoPrincipal }),
	optionalCol("codDiagnosticoRelacionado1", func(c *Consulta) *Optional { return &c.CodDiagnosticoRelacionado1 }),
	optionalCol("codDiagnosticoRelacionado2", func(c *Consulta) *Optional { return &c.CodDiagnosticoRelacionado2 }),
	optionalCol("codDiagnosticoRelacionado3", func(c *Consulta) *Optional { return &c.CodDiagnosticoRelacionado3 }),
	textCol("tipoDiagnosticoPrincipal", func(c *Consulta) *string { return &c.TipoDiagnosticoPrincipal }),
	docTypeCol("tipoDocumentoIdentificacion", func(c *Consulta) *DocumentType { return &c.TipoDocumentoIdentificacion }),
	textCol("numDocumentoIdentificacion", func(c *Consulta) *string { return &c.NumDocumentoIdentificacion }),
	floatCol("vrServicio", func(c *Consulta) *float64 { return &c.VrServicio }),
	textCol("conceptoRecaudo", func(c *Consulta) *string { return &c.ConceptoRecaudo }),
	floatCol("valorPagoModerador", func(c *Consulta) *float64 { return &c.ValorPagoModerador }),
	optionalCol("numFEVPagoModerador", func(c *Consulta) *Optional { return &c.NumFEVPagoModerador }),
	consecutivoCol(func(c *Consulta) *int { return &c.Consecutivo }),
}

var procedimientoColumns = []column[Procedimiento]{
	textCol("codPrestador", func(p *Procedimiento) *string { return &p.CodPrestador }),
	dateTimeCol("fechaInicioAtencion", func(p *Procedimiento) *string { return &p.FechaInicioAtencion }),
	optionalCol("idMIPRES", func(p *Procedimiento) *Optional { return &p.IdMIPRES }),
	optionalCol("numAutorizacion", func(p *Procedimiento) *Optional { return &p.NumAutorizacion }),
	textCol("codProcedimiento", func(p *Procedimiento) *string { return &p.CodProcedimiento }),
	textCol("viaIngresoServicioSalud", func(p *Procedimiento) *string { return &p.ViaIngresoServicioSalud }),
	textCol("modalidadGrupoServicioTecSal", func(p *Procedimiento) *string { return &p.ModalidadGrupoServicioTecSal }),
	textCol("grupoServicios", func(p *Procedimiento) *string { return &p.GrupoServicios }),
	intCol("codServicio", func(p *Procedimiento) *int { return &p.CodServicio }),
	textCol("finalidadTecnologiaSalud", func(p *Procedimiento) *string { return &p.FinalidadTecnologiaSalud }),
	docTypeCol("tipoDocumentoIdentificacion", func(p *Procedimiento) *DocumentType { return &p.TipoDocumentoIdentificacion }),
	textCol("numDocumentoIdentificacion", func(p *Procedimiento) *string { return &p.NumDocumentoIdentificacion }),
	textCol("codDiagnosticoPrincipal", func(p *Procedimiento) *string { return &p.CodDiagnosticoPrincipal }),
	optionalCol("codDiagnosticoRelacionado", func(p *Procedimiento) *Optional { return &p.CodDiagnosticoRelacionado }),
	optionalCol("codComplicacion", func(p *Procedimiento) *Optional { return &p.CodComplicacion }),
	floatCol("vrServicio", func(p *Procedimiento) *float64 { return &p.VrServicio }),
	textCol("conceptoRecaudo", func(p *Procedimiento) *string { return &p.ConceptoRecaudo }),
	floatCol("valorPagoModerador", func(p *Procedimiento) *float64 { return &p.ValorPagoModerador }),
	optionalCol("numFEVPagoModerador", func(p *Procedimiento) *Optional { return &p.NumFEVPagoModerador }),
	consecutivoCol(func(p *Procedimiento) *int { return &p.Consecutivo }),
}

var urgenciaColumns = []column[Urgencia]{
	textCol("codPrestador", func(u *Urgencia) *string { return &u.CodPrestador }),
	dateTimeCol("fechaInicioAtencion", func(u *Urgencia) *string { return &u.FechaInicioAtencion }),
	optionalCol("causaMotivoAtencion", func(u *Urgencia) *Optional { return &u.CausaMotivoAtencion }),
	textCol("codDiagnosticoPrincipal", func(u *Urgencia) *string { return &u.CodDiagnosticoPrincipal }),
	textCol("codDiagnosticoPrincipalE", func(u *Urgencia) *string { return &u.CodDiagnosticoPrincipalE }),
	optionalCol("codDiagnosticoRelacionadoE1", func(u *Urgencia) *Optional { return &u.CodDiagnosticoRelacionadoE1 }),
	optionalCol("codDiagnosticoRelacionadoE2", func(u *Urgencia) *Optional { return &u.CodDiagnosticoRelacionadoE2 }),
	optionalCol("codDiagnosticoRelacionadoE3", func(u *Urgencia) *Optional { return &u.CodDiagnosticoRelacionadoE3 }),
	optionalCol("condicionDestinoUsuarioEgreso", func(u *Urgencia) *Optional { return &u.CondicionDestinoUsuarioEgreso }),
	optionalCol("codDiagnosticoCausaMuerte", func(u *Urgencia) *Optional { return &u.CodDiagnosticoCausaMuerte }),
	dateTimeCol("fechaEgreso", func(u *Urgencia) *string { return &u.FechaEgreso }),
	consecutivoCol(func(u *Urgencia) *int { return &u.Consecutivo }),
}

var hospitalizacionColumns = []column[Hospitalizacion]{
	textCol("codPrestador", func(h *Hospitalizacion) *string { return &h.CodPrestador }),
	textCol("viaIngresoServicioSalud", func(h *Hospitalizacion) *string { return &h.ViaIngresoServicioSalud }),
	dateTimeCol("fechaInicioAtencion", func(h *Hospitalizacion) *string { return &h.FechaInicioAtencion }),
	optionalCol("numAutorizacion", func(h *Hospitalizacion) *Optional { return &h.NumAutorizacion }),
	optionalCol("causaMotivoAtencion", func(h *Hospitalizacion) *Optional { return &h.CausaMotivoAtencion }),
	textCol("codDiagnosticoPrincipal", func(h *Hospitalizacion) *string { return &h.CodDiagnosticoPrincipal }),
	textCol("codDiagnosticoPrincipalE", func(h *Hospitalizacion) *string { return &h.CodDiagnosticoPrincipalE }),
	optionalCol("codDiagnosticoRelacionadoE1", func(h *Hospitalizacion) *Optional { return &h.CodDiagnosticoRelacionadoE1 }),
	optionalCol("codDiagnosticoRelacionadoE2", func(h *Hospitalizacion) *Optional { return &h.CodDiagnosticoRelacionadoE2 }),
	optionalCol("codDiagnosticoRelacionadoE3", func(h *Hospitalizacion) *Optional { return &h.CodDiagnosticoRelacionadoE3 }),
	optionalCol("codComplicacion", func(h *Hospitalizacion) *Optional { return &h.CodComplicacion }),
	optionalCol("condicionDestinoUsuarioEgreso", func(h *Hospitalizacion) *Optional { return &h.CondicionDestinoUsuarioEgreso }),
	optionalCol("codDiagnosticoCausaMuerte", func(h *Hospitalizacion) *Optional { return &h.CodDiagnosticoCausaMuerte }),
	dateTimeCol("fechaEgreso", func(h *Hospitalizacion) *string { return &h.FechaEgreso }),
	consecutivoCol(func(h *Hospitalizacion) *int { return &h.Consecutivo }),
}

var medicamentoColumns = []column[Medicamento]{
	textCol("codPrestador", func(m *Medicamento) *string { return &m.CodPrestador }),
	optionalCol("numAutorizacion", func(m *Medicamento) *Optional { return &m.NumAutorizacion }),
	optionalCol("idMIPRES", func(m *Medicamento) *Optional { return &m.IdMIPRES }),
	dateTimeCol("fechaDispensAdmon", func(m *Medicamento) *string { return &m.FechaDispensAdmon }),
	textCol("codDiagnosticoPrincipal", func(m *Medicamento) *string { return &m.CodDiagnosticoPrincipal }),
	optionalCol("codDiagnosticoRelacionado", func(m *Medicamento) *Optional { return &m.CodDiagnosticoRelacionado }),
	optionalCol("tipoMedicamento", func(m *Medicamento) *Optional { return &m.TipoMedicamento }),
	optionalCol("codTecnologiaSalud", func(m *Medicamento) *Optional { return &m.CodTecnologiaSalud }),
	optionalCol("nomTecnologiaSalud", func(m *Medicamento) *Optional { return &m.NomTecnologiaSalud }),
	floatCol("concentracionMedicamento", func(m *Medicamento) *float64 { return &m.ConcentracionMedicamento }),
	intCol("unidadMedida", func(m *Medicamento) *int { return &m.UnidadMedida }),
	optionalCol("formaFarmaceutica", func(m *Medicamento) *Optional { return &m.FormaFarmaceutica }),
	intCol("unidadMinDispensa", func(m *Medicamento) *int { return &m.UnidadMinDispensa }),
	floatCol("cantidadMedicamento", func(m *Medicamento) *float64 { return &m.CantidadMedicamento }),
	intCol("diasTratamiento", func(m *Medicamento) *int { return &m.DiasTratamiento }),
	docTypeCol("tipoDocumentoIdentificacion", func(m *Medicamento) *DocumentType { return &m.TipoDocumentoIdentificacion }),
	textCol("numDocumentoIdentificacion", func(m *Medicamento) *string { return &m.NumDocumentoIdentificacion }),
	floatCol("vrUnitMedicamento", func(m *Medicamento) *float64 { return &m.VrUnitMedicamento }),
	floatCol("vrServicio", func(m *Medicamento) *float64 { return &m.VrServicio }),
	textCol("conceptoRecaudo", func(m *Medicamento) *string { return &m.ConceptoRecaudo }),
	floatCol("valorPagoModerador", func(m *Medicamento) *float64 { return &m.ValorPagoModerador }),
	optionalCol("numFEVPagoModerador", func(m *Medicamento) *Optional { return &m.NumFEVPagoModerador }),
	consecutivoCol(func(m *Medicamento) *int { return &m.Consecutivo }),
}

var otroServicioColumns = []column[OtroServicio]{
	textCol("codPrestador", func(o *OtroServicio) *string { return &o.CodPrestador }),
	optionalCol("numAutorizacion", func(o *OtroServicio) *Optional { return &o.NumAutorizacion }),
	optionalCol("idMIPRES", func(o *OtroServicio) *Optional { return &o.IdMIPRES }),
	dateTimeCol("fechaSuministroTecnologia", func(o *OtroServicio) *string { return &o.FechaSuministroTecnologia }),
	textCol("tipoOS", func(o *OtroServicio) *string { return &o.TipoOS }),
	optionalCol("codTecnologiaSalud", func(o *OtroServicio) *Optional { return &o.CodTecnologiaSalud }),
	optionalCol("nomTecnologiaSalud", func(o *OtroServicio) *Optional { return &o.NomTecnologiaSalud }),
	floatCol("cantidadOS", func(o *OtroServicio) *float64 { return &o.CantidadOS }),
	docTypeCol("tipoDocumentoIdentificacion", func(o *OtroServicio) *DocumentType { return &o.TipoDocumentoIdentificacion }),
	textCol("numDocumentoIdentificacion", func(o *OtroServicio) *string { return &o.NumDocumentoIdentificacion }),
	floatCol("vrUnitOS", func(o *OtroServicio) *float64 { return &o.VrUnitOS }),
	floatCol("vrServicio", func(o *OtroServicio) *float64 { return &o.VrServicio }),
	textCol("conceptoRecaudo", func(o *OtroServicio) *string { return &o.ConceptoRecaudo }),
	floatCol("valorPagoModerador", func(o *OtroServicio) *float64 { return &o.ValorPagoModerador }),
	optionalCol("numFEVPagoModerador", func(o *OtroServicio) *Optional { return &o.NumFEVPagoModerador }),
	consecutivoCol(func(o *OtroServicio) *int { return &o.Consecutivo }),
}

// Columns returns the CSV header of kind k, without the patient column.
func Columns(k ServiceKind) []string {
	switch k {
	case KindConsultas:
		return names(consultaColumns)
	case KindProcedimientos:
		return names(procedimientoColumns)
	case KindUrgencias:
		return names(urgenciaColumns)
	case KindHospitalizacion:
		return names(hospitalizacionColumns)
	case KindMedicamentos:
		return names(medicamentoColumns)
	case KindOtrosServicios:
		return names(otroServicioColumns)
	}
	return nil
}

// UsuarioColumns returns the usuarios CSV header.
func UsuarioColumns() []string { return names(usuarioColumns) }
