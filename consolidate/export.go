package consolidate

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"ripstool/rips"
)

const dateLayout = "2006-01-02"

// JSONFileName is the name of the consolidated JSON export for date.
func JSONFileName(date time.Time) string {
	return "rips-consolidado-" + date.Format(dateLayout) + ".json"
}

// WriteJSON encodes the consolidated documents as one indented array.
func WriteJSON(w io.Writer, data ProcessedData) error {
	docs := data.ConsolidatedData
	if docs == nil {
		docs = []rips.Document{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(docs); err != nil {
		return fmt.Errorf("encode consolidated documents: %w", err)
	}
	return nil
}

// TotalFactura sums vrServicio over consultas, procedimientos, medicamentos
// and otros servicios. Urgencias and hospitalizacion records carry no
// vrServicio and do not contribute.
func TotalFactura(doc rips.Document) decimal.Decimal {
	total := decimal.Zero
	for _, u := range doc.Usuarios {
		s := u.Servicios
		for _, c := range s.Consultas {
			total = total.Add(decimal.NewFromFloat(c.VrServicio))
		}
		for _, p := range s.Procedimientos {
			total = total.Add(decimal.NewFromFloat(p.VrServicio))
		}
		for _, m := range s.Medicamentos {
			total = total.Add(decimal.NewFromFloat(m.VrServicio))
		}
		for _, o := range s.OtrosServicios {
			total = total.Add(decimal.NewFromFloat(o.VrServicio))
		}
	}
	return total
}

// Tables is the consolidated CSV export: every row is tagged with the
// invoice it came from.
type Tables struct {
	Transaccional *rips.Table
	Usuarios      *rips.Table
	Services      map[rips.ServiceKind]*rips.Table
}

// BuildTables flattens every document and concatenates the results.
func BuildTables(docs []rips.Document) Tables {
	t := Tables{
		Transaccional: &rips.Table{Header: []string{
			"numDocumentoIdObligado", "numFactura", "tipoNota", "numNota", "totalFactura",
		}},
		Usuarios: &rips.Table{Header: withInvoiceColumns(rips.UsuarioColumns())},
		Services: make(map[rips.ServiceKind]*rips.Table),
	}

	for _, doc := range docs {
		t.Transaccional.Rows = append(t.Transaccional.Rows, []string{
			doc.NumDocumentoIdObligado,
			doc.NumFactura,
			doc.TipoNota.String(),
			doc.NumNota.String(),
			TotalFactura(doc).String(),
		})

		flat := rips.Flatten(doc)
		if len(doc.Usuarios) > 0 {
			for i, row := range flat.Usuarios.Rows {
				r := append([]string{doc.Usuarios[i].NumDocumentoIdentificacion}, row...)
				t.Usuarios.Rows = append(t.Usuarios.Rows, append(r, doc.NumFactura))
			}
		}
		for _, k := range rips.AllKinds {
			src, ok := flat.Services[k]
			if !ok || len(src.Rows) == 0 {
				continue
			}
			dst := t.Services[k]
			if dst == nil {
				dst = &rips.Table{Header: withInvoiceColumns(rips.Columns(k))}
				t.Services[k] = dst
			}
			// Flattened service rows already lead with the patient number.
			for _, row := range src.Rows {
				dst.Rows = append(dst.Rows, append(append([]string{}, row...), doc.NumFactura))
			}
		}
	}
	return t
}

func withInvoiceColumns(cols []string) []string {
	out := append([]string{"numIdPaciente"}, cols...)
	return append(out, "numFactura")
}

// WriteFiles writes transaccional-DATE.csv, usuarios-DATE.csv and one
// <kind>-DATE.csv per kind with rows into dir.
func (t Tables) WriteFiles(dir string, date time.Time) ([]string, error) {
	suffix := "-" + date.Format(dateLayout) + ".csv"
	var written []string
	write := func(base string, table *rips.Table) error {
		path := filepath.Join(dir, base+suffix)
		if err := os.WriteFile(path, []byte(table.CSV()), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", filepath.Base(path), err)
		}
		written = append(written, path)
		return nil
	}

	if err := write("transaccional", t.Transaccional); err != nil {
		return written, err
	}
	if err := write("usuarios", t.Usuarios); err != nil {
		return written, err
	}
	for _, k := range rips.AllKinds {
		if table, ok := t.Services[k]; ok {
			if err := write(k.String(), table); err != nil {
				return written, err
			}
		}
	}
	return written, nil
}
