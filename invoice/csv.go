package invoice

import (
	"encoding/csv"
	"fmt"
	"io"
)

// DefaultFileName is the download name of the invoice CSV.
const DefaultFileName = "facturas_electronicas.csv"

var invoiceColumns = []struct {
	header string
	get    func(*InvoiceData) string
}{
	{"NIT", func(d *InvoiceData) string { return d.NIT }},
	{"FECHA DE FACTURA", func(d *InvoiceData) string { return d.FechaDeFactura }},
	{"NUMERO DE FACTURA", func(d *InvoiceData) string { return d.NumeroDeFactura }},
	{"CUFE", func(d *InvoiceData) string { return d.CUFE }},
	{"PREFIJO DE LA FACTURA", func(d *InvoiceData) string { return d.PrefijoDeLaFactura }},
	{"CONSECUTIVO DE LA FACTURA", func(d *InvoiceData) string { return d.ConsecutivoDeLaFactura }},
	{"NUMERO DE CONTRATO", func(d *InvoiceData) string { return d.NumeroDeContrato }},
	{"VALOR BRUTO FACTURA", func(d *InvoiceData) string { return d.ValorBrutoFactura }},
	{"VALOR NETO FACTURA", func(d *InvoiceData) string { return d.ValorNetoFactura }},
	{"CUOTA MODERADORA", func(d *InvoiceData) string { return d.CuotaModeradora }},
	{"COPAGO", func(d *InvoiceData) string { return d.Copago }},
	{"FECHA INGRESO", func(d *InvoiceData) string { return d.FechaIngreso }},
	{"FECHA EGRESO", func(d *InvoiceData) string { return d.FechaEgreso }},
	{"AUTORIZACION", func(d *InvoiceData) string { return d.Autorizacion }},
	{"CODIGO DEL SERVICIO FACTURADO", func(d *InvoiceData) string { return d.CodigoDelServicioFacturado }},
	{"DESCRIPCION DEL SERVICIO", func(d *InvoiceData) string { return d.DescripcionDelServicio }},
	{"CANTIDAD", func(d *InvoiceData) string { return d.Cantidad }},
	{"VALOR UNITARIO", func(d *InvoiceData) string { return d.ValorUnitario }},
	{"VALOR TOTAL SERVICIO", func(d *InvoiceData) string { return d.ValorTotalServicio }},
	{"VALOR IVA", func(d *InvoiceData) string { return d.ValorIVA }},
	{"FECHA EMISION", func(d *InvoiceData) string { return d.FechaEmision }},
	{"CODIGO PRESTADOR", func(d *InvoiceData) string { return d.CodigoPrestador }},
	{"MODALIDAD PAGO", func(d *InvoiceData) string { return d.ModalidadPago }},
	{"TIPO DOCUMENTO IDENTIFICACION", func(d *InvoiceData) string { return d.TipoDocumentoIdentificacion }},
	{"NUMERO DOCUMENTO IDENTIFICACION", func(d *InvoiceData) string { return d.NumeroDocumentoIdentificacion }},
	{"PRIMER APELLIDO", func(d *InvoiceData) string { return d.PrimerApellido }},
	{"SEGUNDO APELLIDO", func(d *InvoiceData) string { return d.SegundoApellido }},
	{"PRIMER NOMBRE", func(d *InvoiceData) string { return d.PrimerNombre }},
	{"SEGUNDO NOMBRE", func(d *InvoiceData) string { return d.SegundoNombre }},
	{"TIPO USUARIO", func(d *InvoiceData) string { return d.TipoUsuario }},
	{"MODALIDAD CONTRATACION", func(d *InvoiceData) string { return d.ModalidadContratacion }},
	{"COBERTURA PLAN BENEFICIOS", func(d *InvoiceData) string { return d.CoberturaPlanBeneficios }},
}

// Header returns the CSV column names.
func Header() []string {
	out := make([]string, len(invoiceColumns))
	for i, c := range invoiceColumns {
		out[i] = c.header
	}
	return out
}

// WriteCSV writes records as semicolon-separated CSV with a header row.
func WriteCSV(w io.Writer, records []InvoiceData) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := cw.Write(Header()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	row := make([]string, len(invoiceColumns))
	for i := range records {
		for j, c := range invoiceColumns {
			row[j] = c.get(&records[i])
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write record %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
