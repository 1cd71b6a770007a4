package rips

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Field is one name/value pair of the transaction header.
type Field struct {
	Name  string
	Value string
}

// Table is a CSV table with a header row.
type Table struct {
	Header []string
	Rows   [][]string
}

// CSV renders the table. An empty table renders as "".
func (t *Table) CSV() string {
	if t == nil || (len(t.Header) == 0 && len(t.Rows) == 0) {
		return ""
	}
	var records [][]string
	if len(t.Header) > 0 {
		records = append(records, t.Header)
	}
	return renderCSV(append(records, t.Rows...))
}

func renderCSV(records [][]string) string {
	var b strings.Builder
	w := csv.NewWriter(&b)
	w.WriteAll(records) // writes to a strings.Builder cannot fail
	return b.String()
}

// Flattened is a RIPS document torn down into one table per entity.
// A service kind missing from Services had no records in the document.
type Flattened struct {
	Transaccion []Field
	Usuarios    *Table
	Services    map[ServiceKind]*Table
}

// TransaccionCSV renders the transaction header as field,value lines.
func (f Flattened) TransaccionCSV() string {
	records := make([][]string, len(f.Transaccion))
	for i, fld := range f.Transaccion {
		records[i] = []string{fld.Name, fld.Value}
	}
	return renderCSV(records)
}

// Flatten is the inverse of Aggregate: every service record becomes a row
// prefixed with its owner's document number as numDocIdPaciente.
func Flatten(doc Document) Flattened {
	f := Flattened{
		Transaccion: []Field{
			{Name: "numDocumentoIdObligado", Value: doc.NumDocumentoIdObligado},
			{Name: "numFactura", Value: doc.NumFactura},
			{Name: "tipoNota", Value: doc.TipoNota.String()},
			{Name: "numNota", Value: doc.NumNota.String()},
		},
		Services: make(map[ServiceKind]*Table),
	}

	if len(doc.Usuarios) == 0 {
		f.Usuarios = &Table{}
		f.Services[KindConsultas] = &Table{}
		f.Services[KindProcedimientos] = &Table{}
		return f
	}

	f.Usuarios = &Table{Header: names(usuarioColumns)}
	for i := range doc.Usuarios {
		f.Usuarios.Rows = append(f.Usuarios.Rows, row(&doc.Usuarios[i], usuarioColumns))
	}

	put := func(k ServiceKind, t *Table) {
		if t != nil {
			f.Services[k] = t
		}
	}
	put(KindConsultas, serviceTable(doc.Usuarios, consultaColumns,
		func(s *Servicios) []Consulta { return s.Consultas }))
	put(KindProcedimientos, serviceTable(doc.Usuarios, procedimientoColumns,
		func(s *Servicios) []Procedimiento { return s.Procedimientos }))
	put(KindUrgencias, serviceTable(doc.Usuarios, urgenciaColumns,
		func(s *Servicios) []Urgencia { return s.Urgencias }))
	put(KindHospitalizacion, serviceTable(doc.Usuarios, hospitalizacionColumns,
		func(s *Servicios) []Hospitalizacion { return s.Hospitalizacion }))
	put(KindMedicamentos, serviceTable(doc.Usuarios, medicamentoColumns,
		func(s *Servicios) []Medicamento { return s.Medicamentos }))
	put(KindOtrosServicios, serviceTable(doc.Usuarios, otroServicioColumns,
		func(s *Servicios) []OtroServicio { return s.OtrosServicios }))
	return f
}

func row[T any](rec *T, cols []column[T]) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.get(rec)
	}
	return out
}

// serviceTable returns nil when no usuario has records of this kind.
func serviceTable[T any](usuarios []Usuario, cols []column[T], pick func(*Servicios) []T) *Table {
	t := &Table{Header: append([]string{"numDocIdPaciente"}, names(cols)...)}
	for i := range usuarios {
		recs := pick(&usuarios[i].Servicios)
		for j := range recs {
			t.Rows = append(t.Rows, append([]string{usuarios[i].NumDocumentoIdentificacion}, row(&recs[j], cols)...))
		}
	}
	if len(t.Rows) == 0 {
		return nil
	}
	return t
}

// WriteFiles writes transaccional.csv, usuarios.csv and one <kind>.csv per
// present service kind into dir, returning the paths written.
func (f Flattened) WriteFiles(dir string) ([]string, error) {
	var written []string
	write := func(name, content string) error {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		written = append(written, path)
		return nil
	}

	if err := write("transaccional.csv", f.TransaccionCSV()); err != nil {
		return written, err
	}
	if f.Usuarios != nil {
		if err := write("usuarios.csv", f.Usuarios.CSV()); err != nil {
			return written, err
		}
	}
	for _, k := range AllKinds {
		t, ok := f.Services[k]
		if !ok {
			continue
		}
		if err := write(k.String()+".csv", t.CSV()); err != nil {
			return written, err
		}
	}
	return written, nil
}
