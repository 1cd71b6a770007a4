package rips

// DocumentType is the identification document kind of a person.
type DocumentType string

const (
	DocCC DocumentType = "CC" // cédula de ciudadanía
	DocTI DocumentType = "TI" // tarjeta de identidad
	DocRC DocumentType = "RC" // registro civil
	DocCE DocumentType = "CE" // cédula de extranjería
	DocPA DocumentType = "PA" // pasaporte
	DocPE DocumentType = "PE" // permiso especial de permanencia
	DocNV DocumentType = "NV" // certificado de nacido vivo
)

// Valid reports whether t is one of the known document types.
func (t DocumentType) Valid() bool {
	switch t {
	case DocCC, DocTI, DocRC, DocCE, DocPA, DocPE, DocNV:
		return true
	}
	return false
}

// ServiceKind identifies one of the six service collections of a Usuario.
type ServiceKind int

const (
	KindConsultas ServiceKind = iota
	KindProcedimientos
	KindUrgencias
	KindHospitalizacion
	KindMedicamentos
	KindOtrosServicios
)

// AllKinds lists the service kinds in document order.
var AllKinds = []ServiceKind{
	KindConsultas,
	KindProcedimientos,
	KindUrgencias,
	KindHospitalizacion,
	KindMedicamentos,
	KindOtrosServicios,
}

// String returns the JSON key of the kind, which doubles as its CSV base name.
func (k ServiceKind) String() string {
	switch k {
	case KindConsultas:
		return "consultas"
	case KindProcedimientos:
		return "procedimientos"
	case KindUrgencias:
		return "urgencias"
	case KindHospitalizacion:
		return "hospitalizacion"
	case KindMedicamentos:
		return "medicamentos"
	case KindOtrosServicios:
		return "otrosServicios"
	}
	return "unknown"
}

// Document is the RIPS transaction root: one invoice and its patients.
type Document struct {
	NumDocumentoIdObligado string    `json:"numDocumentoIdObligado"`
	NumFactura             string    `json:"numFactura"`
	TipoNota               Optional  `json:"tipoNota"`
	NumNota                Optional  `json:"numNota"`
	Usuarios               []Usuario `json:"usuarios"`
}

// Usuario is a patient or beneficiary billed on the invoice.
type Usuario struct {
	TipoDocumentoIdentificacion  DocumentType `json:"tipoDocumentoIdentificacion"`
	NumDocumentoIdentificacion   string       `json:"numDocumentoIdentificacion"`
	TipoUsuario                  string       `json:"tipoUsuario"`
	FechaNacimiento              string       `json:"fechaNacimiento"`
	CodSexo                      string       `json:"codSexo"`
	CodPaisResidencia            string       `json:"codPaisResidencia"`
	CodMunicipioResidencia       string       `json:"codMunicipioResidencia"`
	CodZonaTerritorialResidencia string       `json:"codZonaTerritorialResidencia"`
	Incapacidad                  string       `json:"incapacidad"`
	CodPaisOrigen                string       `json:"codPaisOrigen"`
	Consecutivo                  int          `json:"consecutivo"`
	Servicios                    Servicios    `json:"servicios"`
}

// Servicios holds the services rendered to one Usuario. Empty kinds are
// omitted from JSON rather than serialized as empty arrays.
type Servicios struct {
	Consultas       []Consulta        `json:"consultas,omitempty"`
	Procedimientos  []Procedimiento   `json:"procedimientos,omitempty"`
	Urgencias       []Urgencia        `json:"urgencias,omitempty"`
	Hospitalizacion []Hospitalizacion `json:"hospitalizacion,omitempty"`
	Medicamentos    []Medicamento     `json:"medicamentos,omitempty"`
	OtrosServicios  []OtroServicio    `json:"otrosServicios,omitempty"`
}

// Count returns the number of records across all six kinds.
func (s Servicios) Count() int {
	return len(s.Consultas) + len(s.Procedimientos) + len(s.Urgencias) +
		len(s.Hospitalizacion) + len(s.Medicamentos) + len(s.OtrosServicios)
}

// Len returns the number of records of kind k.
func (s Servicios) Len(k ServiceKind) int {
	switch k {
	case KindConsultas:
		return len(s.Consultas)
	case KindProcedimientos:
		return len(s.Procedimientos)
	case KindUrgencias:
		return len(s.Urgencias)
	case KindHospitalizacion:
		return len(s.Hospitalizacion)
	case KindMedicamentos:
		return len(s.Medicamentos)
	case KindOtrosServicios:
		return len(s.OtrosServicios)
	}
	return 0
}

// Entry is a parsed service record still carrying the patient document
// number it must be joined on (numDocIdPaciente).
type Entry[T any] struct {
	Patient string
	Record  T
}

type Consulta struct {
	CodPrestador                 string       `json:"codPrestador"`
	FechaInicioAtencion          string       `json:"fechaInicioAtencion"`
	NumAutorizacion              Optional     `json:"numAutorizacion"`
	CodConsulta                  string       `json:"codConsulta"`
	ModalidadGrupoServicioTecSal string       `json:"modalidadGrupoServicioTecSal"`
	GrupoServicios               string       `json:"grupoServicios"`
	CodServicio                  int          `json:"codServicio"`
	FinalidadTecnologiaSalud     string       `json:"finalidadTecnologiaSalud"`
	CausaMotivoAtencion          string       `json:"causaMotivoAtencion"`
	CodDiagnosticoPrincipal      string       `json:"codDiagnosticoPrincipal"`
	CodDiagnosticoRelacionado1   Optional     `json:"codDiagnosticoRelacionado1"`
	CodDiagnosticoRelacionado2   Optional     `json:"codDiagnosticoRelacionado2"`
	CodDiagnosticoRelacionado3   Optional     `json:"codDiagnosticoRelacionado3"`
	TipoDiagnosticoPrincipal     string       `json:"tipoDiagnosticoPrincipal"`
	TipoDocumentoIdentificacion  DocumentType `json:"tipoDocumentoIdentificacion"`
	NumDocumentoIdentificacion   string       `json:"numDocumentoIdentificacion"`
	VrServicio                   float64      `json:"vrServicio"`
	ConceptoRecaudo              string       `json:"conceptoRecaudo"`
	ValorPagoModerador           float64      `json:"valorPagoModerador"`
	NumFEVPagoModerador          Optional     `json:"numFEVPagoModerador"`
	Consecutivo                  int          `json:"consecutivo"`
}

type Procedimiento struct {
	CodPrestador                 string       `json:"codPrestador"`
	FechaInicioAtencion          string       `json:"fechaInicioAtencion"`
	IdMIPRES                     Optional     `json:"idMIPRES"`
	NumAutorizacion              Optional     `json:"numAutorizacion"`
	CodProcedimiento             string       `json:"codProcedimiento"`
	ViaIngresoServicioSalud      string       `json:"viaIngresoServicioSalud"`
	ModalidadGrupoServicioTecSal string       `json:"modalidadGrupoServicioTecSal"`
	GrupoServicios               string       `json:"grupoServicios"`
	CodServicio                  int          `json:"codServicio"`
	FinalidadTecnologiaSalud     string       `json:"finalidadTecnologiaSalud"`
	TipoDocumentoIdentificacion  DocumentType `json:"tipoDocumentoIdentificacion"`
	NumDocumentoIdentificacion   string       `json:"numDocumentoIdentificacion"`
	CodDiagnosticoPrincipal      string       `json:"codDiagnosticoPrincipal"`
	CodDiagnosticoRelacionado    Optional     `json:"codDiagnosticoRelacionado"`
	CodComplicacion              Optional     `json:"codComplicacion"`
	VrServicio                   float64      `json:"vrServicio"`
	ConceptoRecaudo              string       `json:"conceptoRecaudo"`
	ValorPagoModerador           float64      `json:"valorPagoModerador"`
	NumFEVPagoModerador          Optional     `json:"numFEVPagoModerador"`
	Consecutivo                  int          `json:"consecutivo"`
}

type Urgencia struct {
	CodPrestador                  string   `json:"codPrestador"`
	FechaInicioAtencion           string   `json:"fechaInicioAtencion"`
	CausaMotivoAtencion           Optional `json:"causaMotivoAtencion"`
	CodDiagnosticoPrincipal       string   `json:"codDiagnosticoPrincipal"`
	CodDiagnosticoPrincipalE      string   `json:"codDiagnosticoPrincipalE"`
	CodDiagnosticoRelacionadoE1   Optional `json:"codDiagnosticoRelacionadoE1"`
	CodDiagnosticoRelacionadoE2   Optional `json:"codDiagnosticoRelacionadoE2"`
	CodDiagnosticoRelacionadoE3   Optional `json:"codDiagnosticoRelacionadoE3"`
	CondicionDestinoUsuarioEgreso Optional `json:"condicionDestinoUsuarioEgreso"`
	CodDiagnosticoCausaMuerte     Optional `json:"codDiagnosticoCausaMuerte"`
	FechaEgreso                   string   `json:"fechaEgreso"`
	Consecutivo                   int      `json:"consecutivo"`
}

type Hospitalizacion struct {
	CodPrestador                  string   `json:"codPrestador"`
	ViaIngresoServicioSalud       string   `json:"viaIngresoServicioSalud"`
	FechaInicioAtencion           string   `json:"fechaInicioAtencion"`
	NumAutorizacion               Optional `json:"numAutorizacion"`
	CausaMotivoAtencion           Optional `json:"causaMotivoAtencion"`
	CodDiagnosticoPrincipal       string   `json:"codDiagnosticoPrincipal"`
	CodDiagnosticoPrincipalE      string   `json:"codDiagnosticoPrincipalE"`
	CodDiagnosticoRelacionadoE1   Optional `json:"codDiagnosticoRelacionadoE1"`
	CodDiagnosticoRelacionadoE2   Optional `json:"codDiagnosticoRelacionadoE2"`
	CodDiagnosticoRelacionadoE3   Optional `json:"codDiagnosticoRelacionadoE3"`
	CodComplicacion               Optional `json:"codComplicacion"`
	CondicionDestinoUsuarioEgreso Optional `json:"condicionDestinoUsuarioEgreso"`
	CodDiagnosticoCausaMuerte     Optional `json:"codDiagnosticoCausaMuerte"`
	FechaEgreso                   string   `json:"fechaEgreso"`
	Consecutivo                   int      `json:"consecutivo"`
}

type Medicamento struct {
	CodPrestador                string       `json:"codPrestador"`
	NumAutorizacion             Optional     `json:"numAutorizacion"`
	IdMIPRES                    Optional     `json:"idMIPRES"`
	FechaDispensAdmon           string       `json:"fechaDispensAdmon"`
	CodDiagnosticoPrincipal     string       `json:"codDiagnosticoPrincipal"`
	CodDiagnosticoRelacionado   Optional     `json:"codDiagnosticoRelacionado"`
	TipoMedicamento             Optional     `json:"tipoMedicamento"`
	CodTecnologiaSalud          Optional     `json:"codTecnologiaSalud"`
	NomTecnologiaSalud          Optional     `json:"nomTecnologiaSalud"`
	ConcentracionMedicamento    float64      `json:"concentracionMedicamento"`
	UnidadMedida                int          `json:"unidadMedida"`
	FormaFarmaceutica           Optional     `json:"formaFarmaceutica"`
	UnidadMinDispensa           int          `json:"unidadMinDispensa"`
	CantidadMedicamento         float64      `json:"cantidadMedicamento"`
	DiasTratamiento             int          `json:"diasTratamiento"`
	TipoDocumentoIdentificacion DocumentType `json:"tipoDocumentoIdentificacion"`
	NumDocumentoIdentificacion  string       `json:"numDocumentoIdentificacion"`
	VrUnitMedicamento           float64      `json:"vrUnitMedicamento"`
	VrServicio                  float64      `json:"vrServicio"`
	ConceptoRecaudo             string       `json:"conceptoRecaudo"`
	ValorPagoModerador          float64      `json:"valorPagoModerador"`
	NumFEVPagoModerador         Optional     `json:"numFEVPagoModerador"`
	Consecutivo                 int          `json:"consecutivo"`
}

type OtroServicio struct {
	CodPrestador                string       `json:"codPrestador"`
	NumAutorizacion             Optional     `json:"numAutorizacion"`
	IdMIPRES                    Optional     `json:"idMIPRES"`
	FechaSuministroTecnologia   string       `json:"fechaSuministroTecnologia"`
	TipoOS                      string       `json:"tipoOS"`
	CodTecnologiaSalud          Optional     `json:"codTecnologiaSalud"`
	NomTecnologiaSalud          Optional     `json:"nomTecnologiaSalud"`
	CantidadOS                  float64      `json:"cantidadOS"`
	TipoDocumentoIdentificacion DocumentType `json:"tipoDocumentoIdentificacion"`
	NumDocumentoIdentificacion  string       `json:"numDocumentoIdentificacion"`
	VrUnitOS                    float64      `json:"vrUnitOS"`
	VrServicio                  float64      `json:"vrServicio"`
	ConceptoRecaudo             string       `json:"conceptoRecaudo"`
	ValorPagoModerador          float64      `json:"valorPagoModerador"`
	NumFEVPagoModerador         Optional     `json:"numFEVPagoModerador"`
	Consecutivo                 int          `json:"consecutivo"`
}

// withConsecutivo returns a copy of the record renumbered to n.

func (c Consulta) withConsecutivo(n int) Consulta               { c.Consecutivo = n; return c }
func (p Procedimiento) withConsecutivo(n int) Procedimiento     { p.Consecutivo = n; return p }
func (u Urgencia) withConsecutivo(n int) Urgencia               { u.Consecutivo = n; return u }
func (h Hospitalizacion) withConsecutivo(n int) Hospitalizacion { h.Consecutivo = n; return h }
func (m Medicamento) withConsecutivo(n int) Medicamento         { m.Consecutivo = n; return m }
func (o OtroServicio) withConsecutivo(n int) OtroServicio       { o.Consecutivo = n; return o }
