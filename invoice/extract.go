package invoice

import (
	"errors"
	"regexp"
	"time"

	"github.com/beevik/etree"
)

// ErrUnparseableDocument is returned for an invoice element that has neither
// a CUFE nor an invoice number. Batches treat it as contributing nothing.
var ErrUnparseableDocument = errors.New("invoice has neither CUFE nor invoice number")

// InvoiceData is one billed line of an electronic invoice. Values are the
// literal text found in the XML.
type InvoiceData struct {
	NIT                           string `json:"NIT" parquet:"nit"`
	FechaDeFactura                string `json:"FECHA_DE_FACTURA" parquet:"fecha_de_factura"`
	NumeroDeFactura               string `json:"NUMERO_DE_FACTURA" parquet:"numero_de_factura"`
	CUFE                          string `json:"CUFE" parquet:"cufe"`
	PrefijoDeLaFactura            string `json:"PREFIJO_DE_LA_FACTURA" parquet:"prefijo_de_la_factura"`
	ConsecutivoDeLaFactura        string `json:"CONSECUTIVO_DE_LA_FACTURA" parquet:"consecutivo_de_la_factura"`
	NumeroDeContrato              string `json:"NUMERO_DE_CONTRATO" parquet:"numero_de_contrato"`
	ValorBrutoFactura             string `json:"VALOR_BRUTO_FACTURA" parquet:"valor_bruto_factura"`
	ValorNetoFactura              string `json:"VALOR_NETO_FACTURA" parquet:"valor_neto_factura"`
	CuotaModeradora               string `json:"CUOTA_MODERADORA" parquet:"cuota_moderadora"`
	Copago                        string `json:"COPAGO" parquet:"copago"`
	FechaIngreso                  string `json:"FECHA_INGRESO" parquet:"fecha_ingreso"`
	FechaEgreso                   string `json:"FECHA_EGRESO" parquet:"fecha_egreso"`
	Autorizacion                  string `json:"AUTORIZACION" parquet:"autorizacion"`
	CodigoDelServicioFacturado    string `json:"CODIGO_DEL_SERVICIO_FACTURADO" parquet:"codigo_del_servicio_facturado"`
	DescripcionDelServicio        string `json:"DESCRIPCION_DEL_SERVICIO" parquet:"descripcion_del_servicio"`
	Cantidad                      string `json:"CANTIDAD" parquet:"cantidad"`
	ValorUnitario                 string `json:"VALOR_UNITARIO" parquet:"valor_unitario"`
	ValorTotalServicio            string `json:"VALOR_TOTAL_SERVICIO" parquet:"valor_total_servicio"`
	ValorIVA                      string `json:"VALOR_IVA" parquet:"valor_iva"`
	FechaEmision                  string `json:"FECHA_EMISION" parquet:"fecha_emision"`
	CodigoPrestador               string `json:"CODIGO_PRESTADOR" parquet:"codigo_prestador"`
	ModalidadPago                 string `json:"MODALIDAD_PAGO" parquet:"modalidad_pago"`
	TipoDocumentoIdentificacion   string `json:"TIPO_DOCUMENTO_IDENTIFICACION" parquet:"tipo_documento_identificacion"`
	NumeroDocumentoIdentificacion string `json:"NUMERO_DOCUMENTO_IDENTIFICACION" parquet:"numero_documento_identificacion"`
	PrimerApellido                string `json:"PRIMER_APELLIDO" parquet:"primer_apellido"`
	SegundoApellido               string `json:"SEGUNDO_APELLIDO" parquet:"segundo_apellido"`
	PrimerNombre                  string `json:"PRIMER_NOMBRE" parquet:"primer_nombre"`
	SegundoNombre                 string `json:"SEGUNDO_NOMBRE" parquet:"segundo_nombre"`
	TipoUsuario                   string `json:"TIPO_USUARIO" parquet:"tipo_usuario"`
	ModalidadContratacion         string `json:"MODALIDAD_CONTRATACION" parquet:"modalidad_contratacion"`
	CoberturaPlanBeneficios       string `json:"COBERTURA_PLAN_BENEFICIOS" parquet:"cobertura_plan_beneficios"`
}

type basicInfo struct {
	invoiceNumber string
	cufe          string
	issueDate     string
	nit           string
}

type healthData struct {
	codigoPrestador               string
	numeroContrato                string
	numeroAutorizacion            string
	copago                        string
	cuotaModeradora               string
	prefijo                       string
	fechaIngreso                  string
	fechaEgreso                   string
	modalidadPago                 string
	tipoDocumentoIdentificacion   string
	numeroDocumentoIdentificacion string
	primerApellido                string
	segundoApellido               string
	primerNombre                  string
	segundoNombre                 string
	tipoUsuario                   string
	modalidadContratacion         string
	coberturaPlanBeneficios       string
}

var leadingLettersRe = regexp.MustCompile(`^[A-Z]+`)

// Extractor turns located invoice elements into InvoiceData records.
type Extractor struct {
	// Now supplies FECHA_EMISION when the invoice has no issue date.
	Now func() time.Time
}

func NewExtractor() *Extractor {
	return &Extractor{Now: time.Now}
}

// Extract returns one record per InvoiceLine, or a single record for an
// invoice without lines.
func (x *Extractor) Extract(loc Located) ([]InvoiceData, error) {
	if loc.Invoice == nil {
		return nil, ErrUnparseableDocument
	}
	info := extractBasicInfo(loc)
	if info.cufe == "" && info.invoiceNumber == "" {
		return nil, ErrUnparseableDocument
	}
	hd := extractHealthData(loc)
	inv := loc.Invoice

	header := InvoiceData{
		NIT:                           info.nit,
		FechaDeFactura:                info.issueDate,
		NumeroDeFactura:               info.invoiceNumber,
		CUFE:                          info.cufe,
		PrefijoDeLaFactura:            firstNonEmpty(hd.prefijo, textOf(inv, "Prefijo")),
		ConsecutivoDeLaFactura:        firstNonEmpty(textOf(inv, "Consecutivo"), leadingLettersRe.ReplaceAllString(info.invoiceNumber, "")),
		NumeroDeContrato:              hd.numeroContrato,
		ValorBrutoFactura:             monetaryTotal(inv, "TaxInclusiveAmount"),
		ValorNetoFactura:              monetaryTotal(inv, "LineExtensionAmount"),
		CuotaModeradora:               firstNonEmpty(hd.cuotaModeradora, "0"),
		Copago:                        firstNonEmpty(hd.copago, "0"),
		FechaIngreso:                  hd.fechaIngreso,
		FechaEgreso:                   hd.fechaEgreso,
		Autorizacion:                  hd.numeroAutorizacion,
		ValorIVA:                      "0",
		FechaEmision:                  info.issueDate,
		CodigoPrestador:               hd.codigoPrestador,
		ModalidadPago:                 hd.modalidadPago,
		TipoDocumentoIdentificacion:   hd.tipoDocumentoIdentificacion,
		NumeroDocumentoIdentificacion: hd.numeroDocumentoIdentificacion,
		PrimerApellido:                hd.primerApellido,
		SegundoApellido:               hd.segundoApellido,
		PrimerNombre:                  hd.primerNombre,
		SegundoNombre:                 hd.segundoNombre,
		TipoUsuario:                   hd.tipoUsuario,
		ModalidadContratacion:         hd.modalidadContratacion,
		CoberturaPlanBeneficios:       hd.coberturaPlanBeneficios,
	}
	if header.FechaEmision == "" {
		now := time.Now
		if x.Now != nil {
			now = x.Now
		}
		header.FechaEmision = now().Format("2006-01-02")
	}

	lines := FindAllByLocalName(inv, "InvoiceLine")
	if len(lines) == 0 {
		rec := header
		rec.Cantidad = "1"
		rec.ValorTotalServicio = header.ValorNetoFactura
		return []InvoiceData{rec}, nil
	}

	out := make([]InvoiceData, 0, len(lines))
	for _, line := range lines {
		rec := header
		rec.CodigoDelServicioFacturado = firstNonEmpty(
			textOf(line, "Item", "StandardItemIdentification", "ID"),
			firstNonEmpty(childText(line, "ID"), textOf(line, "ID")),
		)
		rec.DescripcionDelServicio = firstNonEmpty(textOf(line, "Item", "Description"), textOf(line, "Description"))
		rec.Cantidad = textOf(line, "InvoicedQuantity")
		rec.ValorUnitario = firstNonEmpty(textOf(line, "Price", "PriceAmount"), textOf(line, "PriceAmount"))
		rec.ValorTotalServicio = firstNonEmpty(childText(line, "LineExtensionAmount"), textOf(line, "LineExtensionAmount"))
		out = append(out, rec)
	}
	return out, nil
}

// monetaryTotal reads a LegalMonetaryTotal amount, falling back to the first
// element with that name anywhere in the invoice.
func monetaryTotal(inv *etree.Element, name string) string {
	return firstNonEmpty(textOf(inv, "LegalMonetaryTotal", name), textOf(inv, name))
}

func extractBasicInfo(loc Located) basicInfo {
	inv := loc.Invoice

	var number string
	if loc.Wrapper != nil {
		number = textOf(loc.Wrapper, "ParentDocumentID")
	}

	if loc.DirectSubstitute {
		return basicInfo{
			invoiceNumber: firstNonEmpty(textOf(inv, "ParentDocumentID"), number),
			cufe:          textOf(inv, "UUID"),
			issueDate:     textOf(inv, "IssueDate"),
			nit:           firstNonEmpty(textOf(inv, "SenderParty", "PartyTaxScheme", "CompanyID"), textOf(inv, "CompanyID")),
		}
	}

	info := basicInfo{
		cufe:      firstNonEmpty(textOf(inv, "UUID"), textOf(inv, "CUFE"), cufeAttr(inv)),
		issueDate: firstText(inv, "IssueDate", "FechaFactura", "FECHA_FACTURA"),
	}

	if number == "" {
		number = firstNonEmpty(childText(inv, "ID"), firstText(inv, "ID", "NumeroFactura", "NUMERO_FACTURA"))
	}
	if number == "" {
		prefijo := firstNonEmpty(CustomFieldValue(inv, "Prefijo"), CustomTagValue(inv, "PREFIJO"))
		if prefijo != "" {
			consecutivo := firstNonEmpty(CustomFieldValue(inv, "Consecutivo"), textOf(inv, "Consecutivo"))
			number = prefijo + leadingLettersRe.ReplaceAllString(consecutivo, "")
		}
	}
	info.invoiceNumber = number

	supplier := FindByLocalName(inv, "AccountingSupplierParty")
	info.nit = firstNonEmpty(
		textOf(supplier, "Party", "PartyTaxScheme", "CompanyID"),
		textOf(supplier, "Party", "CompanyID"),
		firstText(inv, "NIT", "Nit"),
	)
	return info
}

// cufeAttr finds a legacy CUFE attribute on the invoice or a descendant.
func cufeAttr(inv *etree.Element) string {
	if v, ok := attrValue(inv, "CUFE"); ok {
		return v
	}
	var found string
	var walk func(*etree.Element) bool
	walk = func(e *etree.Element) bool {
		for _, c := range e.ChildElements() {
			if v, ok := attrValue(c, "CUFE"); ok && v != "" {
				found = v
				return true
			}
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(inv)
	return found
}

// extractHealthData reads the health-sector metadata. Values missing from
// the invoice are looked up on the AttachedDocument wrapper.
func extractHealthData(loc Located) healthData {
	scopes := []*etree.Element{loc.Invoice}
	if loc.Wrapper != nil {
		scopes = append(scopes, loc.Wrapper)
	}
	lookup := func(fn func(*etree.Element) string) string {
		for _, s := range scopes {
			if v := fn(s); v != "" {
				return v
			}
		}
		return ""
	}
	tag := func(name string) string {
		return lookup(func(e *etree.Element) string { return CustomTagValue(e, name) })
	}
	field := func(name string) string {
		return lookup(func(e *etree.Element) string { return CustomFieldValue(e, name) })
	}
	period := func(name string) string {
		return lookup(func(e *etree.Element) string {
			return textOf(FindByLocalName(e, "InvoicePeriod"), name)
		})
	}

	return healthData{
		codigoPrestador:    tag("CODIGO_PRESTADOR"),
		numeroContrato:     firstNonEmpty(tag("NUMERO_CONTRATO"), field("NUMERO_CONTRATO")),
		numeroAutorizacion: tag("NUMERO_AUTORIZACION"),
		copago:             firstNonEmpty(tag("COPAGO"), field("Copago")),
		cuotaModeradora:    firstNonEmpty(tag("CUOTA_MODERADORA"), field("CUOTA_MODERADORA")),
		prefijo: firstNonEmpty(tag("PREFIJO"), field("Prefijo"),
			lookup(func(e *etree.Element) string { return textOf(e, "Prefix") })),
		fechaIngreso:                  firstNonEmpty(period("StartDate"), tag("FECHA_INGRESO")),
		fechaEgreso:                   firstNonEmpty(period("EndDate"), tag("FECHA_EGRESO")),
		modalidadPago:                 tag("MODALIDAD_PAGO"),
		tipoDocumentoIdentificacion:   tag("TIPO_DOCUMENTO_IDENTIFICACION"),
		numeroDocumentoIdentificacion: tag("NUMERO_DOCUMENTO_IDENTIFICACION"),
		primerApellido:                tag("PRIMER_APELLIDO"),
		segundoApellido:               tag("SEGUNDO_APELLIDO"),
		primerNombre:                  tag("PRIMER_NOMBRE"),
		segundoNombre:                 tag("SEGUNDO_NOMBRE"),
		tipoUsuario:                   tag("TIPO_USUARIO"),
		modalidadContratacion:         tag("MODALIDAD_CONTRATACION"),
		coberturaPlanBeneficios:       tag("COBERTURA_PLAN_BENEFICIOS"),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
