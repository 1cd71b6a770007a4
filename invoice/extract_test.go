package invoice

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestParser() *Parser {
	fixed := time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)
	return NewParser(zerolog.Nop()).WithExtractor(&Extractor{Now: func() time.Time { return fixed }})
}

func TestParseDirectInvoice(t *testing.T) {
	records, err := newTestParser().ParseDocument([]byte(directInvoiceXML))
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records (one per line), got %d", len(records))
	}

	r := records[0]
	checks := []struct {
		field, got, want string
	}{
		{"NIT", r.NIT, "900123456"},
		{"NUMERO_DE_FACTURA", r.NumeroDeFactura, "SETP990000001"},
		{"CUFE", r.CUFE, "abc123cufe"},
		{"FECHA_DE_FACTURA", r.FechaDeFactura, "2024-03-15"},
		{"CONSECUTIVO", r.ConsecutivoDeLaFactura, "990000001"},
		{"NUMERO_DE_CONTRATO", r.NumeroDeContrato, "CT-77"},
		{"VALOR_BRUTO_FACTURA", r.ValorBrutoFactura, "150000.00"},
		{"VALOR_NETO_FACTURA", r.ValorNetoFactura, "150000.00"},
		{"COPAGO", r.Copago, "5000"},
		{"CUOTA_MODERADORA", r.CuotaModeradora, "0"},
		{"FECHA_INGRESO", r.FechaIngreso, "2024-03-01"},
		{"FECHA_EGRESO", r.FechaEgreso, "2024-03-10"},
		{"CODIGO_DEL_SERVICIO", r.CodigoDelServicioFacturado, "890201"},
		{"DESCRIPCION", r.DescripcionDelServicio, "CONSULTA MEDICINA GENERAL"},
		{"CANTIDAD", r.Cantidad, "2"},
		{"VALOR_UNITARIO", r.ValorUnitario, "50000.00"},
		{"VALOR_TOTAL_SERVICIO", r.ValorTotalServicio, "100000.00"},
		{"VALOR_IVA", r.ValorIVA, "0"},
		{"FECHA_EMISION", r.FechaEmision, "2024-03-15"},
		{"CODIGO_PRESTADOR", r.CodigoPrestador, "110010001"},
		{"MODALIDAD_PAGO", r.ModalidadPago, "04"},
		{"TIPO_DOCUMENTO", r.TipoDocumentoIdentificacion, "CC"},
		{"NUMERO_DOCUMENTO", r.NumeroDocumentoIdentificacion, "1020304050"},
		{"PRIMER_APELLIDO", r.PrimerApellido, "PEREZ"},
		{"PRIMER_NOMBRE", r.PrimerNombre, "ANA"},
		{"SEGUNDO_NOMBRE", r.SegundoNombre, ""},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s: expected %q, got %q", c.field, c.want, c.got)
		}
	}

	second := records[1]
	if second.CodigoDelServicioFacturado != "2" {
		t.Errorf("expected line ID as code fallback, got %q", second.CodigoDelServicioFacturado)
	}
	if second.DescripcionDelServicio != "HEMOGRAMA" || second.ValorTotalServicio != "50000.00" {
		t.Errorf("unexpected second line %+v", second)
	}
	// Header fields are shared across lines.
	if second.CUFE != r.CUFE || second.NIT != r.NIT || second.PrimerNombre != r.PrimerNombre {
		t.Error("expected identical header fields on every line")
	}
}

func TestParseAttachedDocumentCDATA(t *testing.T) {
	records, err := newTestParser().ParseDocument([]byte(attachedDocumentXML))
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record for an invoice without lines, got %d", len(records))
	}
	r := records[0]
	if r.NumeroDeFactura != "FEV100" {
		t.Errorf("expected invoice number from ParentDocumentID, got %q", r.NumeroDeFactura)
	}
	if r.CUFE != "cufe-embedded" {
		t.Errorf("expected CUFE from embedded invoice, got %q", r.CUFE)
	}
	if r.NIT != "900999888" {
		t.Errorf("expected NIT from Party/CompanyID, got %q", r.NIT)
	}
	if r.Cantidad != "1" || r.ValorTotalServicio != "80000" {
		t.Errorf("expected implicit line with net total, got cantidad %q total %q", r.Cantidad, r.ValorTotalServicio)
	}
	if r.ValorBrutoFactura != "95200" {
		t.Errorf("expected gross 95200, got %q", r.ValorBrutoFactura)
	}
	if r.PrefijoDeLaFactura != "FEV" || r.ConsecutivoDeLaFactura != "100" {
		t.Errorf("expected prefix FEV / consecutive 100, got %q / %q", r.PrefijoDeLaFactura, r.ConsecutivoDeLaFactura)
	}
	if r.Autorizacion != "AUT-555" {
		t.Errorf("expected authorization from flat AdditionalInformation, got %q", r.Autorizacion)
	}
	if r.TipoUsuario != "01" {
		t.Errorf("expected tipo usuario from wrapper metadata, got %q", r.TipoUsuario)
	}
	if r.CodigoDelServicioFacturado != "" || r.ValorUnitario != "" {
		t.Errorf("expected empty line fields, got %q / %q", r.CodigoDelServicioFacturado, r.ValorUnitario)
	}
}

func TestParseAttachedDocumentFallback(t *testing.T) {
	records, err := newTestParser().ParseDocument([]byte(attachedFallbackXML))
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	r := records[0]
	if r.NumeroDeFactura != "FEV200" || r.CUFE != "cufe-fallback" {
		t.Errorf("unexpected number/CUFE %q / %q", r.NumeroDeFactura, r.CUFE)
	}
	if r.NIT != "800111222" {
		t.Errorf("expected NIT from SenderParty, got %q", r.NIT)
	}
	if r.FechaDeFactura != "2024-04-01" {
		t.Errorf("expected issue date 2024-04-01, got %q", r.FechaDeFactura)
	}
}

func TestParseAttachedDocumentBrokenEmbedded(t *testing.T) {
	records, err := newTestParser().ParseDocument([]byte(attachedBrokenXML))
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if len(records) != 1 || records[0].NumeroDeFactura != "FEV300" {
		t.Fatalf("expected fallback record FEV300, got %+v", records)
	}
	if records[0].FechaEmision != "2024-06-30" {
		t.Errorf("expected FECHA_EMISION from clock, got %q", records[0].FechaEmision)
	}
}

func TestParseMultipleInvoices(t *testing.T) {
	records, err := newTestParser().ParseDocument([]byte(multiInvoiceXML))
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records (unidentified invoice skipped), got %d", len(records))
	}
	if records[0].NumeroDeFactura != "FE1" || records[0].NIT != "900111111" {
		t.Errorf("unexpected first record %+v", records[0])
	}
	if records[1].NumeroDeFactura != "FE3" || records[1].FechaDeFactura != "2024-01-31" {
		t.Errorf("unexpected second record %+v", records[1])
	}
	if records[1].ConsecutivoDeLaFactura != "3" {
		t.Errorf("expected consecutive 3, got %q", records[1].ConsecutivoDeLaFactura)
	}
}

func TestParseDocumentErrors(t *testing.T) {
	p := newTestParser()
	if _, err := p.ParseDocument([]byte("  \n")); !errors.Is(err, ErrEmptyDocument) {
		t.Errorf("expected ErrEmptyDocument, got %v", err)
	}
	if _, err := p.ParseDocument([]byte("<Invoice><unclosed>")); err == nil {
		t.Error("expected error for malformed XML")
	}
	noIDs := `<AttachedDocument><Note>nothing here</Note></AttachedDocument>`
	if _, err := p.ParseDocument([]byte(noIDs)); !errors.Is(err, ErrNoInvoices) {
		t.Errorf("expected ErrNoInvoices, got %v", err)
	}
	if _, err := p.ParseDocument([]byte(`<Invoice><Note>x</Note></Invoice>`)); !errors.Is(err, ErrNoInvoices) {
		t.Errorf("expected ErrNoInvoices for unidentified invoice, got %v", err)
	}
}

func TestExtractRejectsUnidentified(t *testing.T) {
	doc, err := parseXML([]byte(`<Invoice><cbc:Note xmlns:cbc="urn:x">x</cbc:Note></Invoice>`))
	if err != nil {
		t.Fatalf("parseXML: %v", err)
	}
	_, err = NewExtractor().Extract(Located{Invoice: doc.Root()})
	if !errors.Is(err, ErrUnparseableDocument) {
		t.Errorf("expected ErrUnparseableDocument, got %v", err)
	}
}
