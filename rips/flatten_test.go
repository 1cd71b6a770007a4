package rips

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFlattenRoundTrip(t *testing.T) {
	usuariosIn := []string{
		"CC,123,01,1990-02-01,M,170,11001,01,NO,170,1",
		"TI,456,01,2010-07-15,F,170,05001,02,NO,170,2",
	}
	consultasIn := []string{
		"123,110010001,2024-03-01 08:30,,890201,01,01,325,15,38,A09X,,,,01,CC,555,35000.5,05,0,,1",
		"123,110010001,2024-03-02 08:30,AUT-7,890301,01,01,325,15,38,J00X,R51X,,,01,CC,555,42000,05,3500,FEV1,2",
		"456,110010001,2024-03-03 10:00,,890201,01,01,325,15,38,A09X,,,,01,CC,555,35000,05,0,,1",
	}
	otrosIn := []string{
		"456,110010001,,,2024-03-04 00:00,01,,GASA,2,CC,555,1500,3000,05,0,,1",
	}

	p := newTestParser()
	set, err := p.ParseUsuarios(strings.NewReader(strings.Join(usuariosIn, "\n")))
	if err != nil {
		t.Fatalf("ParseUsuarios: %v", err)
	}
	consultas, err := p.ParseConsultas(strings.NewReader(strings.Join(consultasIn, "\n")))
	if err != nil {
		t.Fatalf("ParseConsultas: %v", err)
	}
	otros, err := p.ParseOtrosServicios(strings.NewReader(strings.Join(otrosIn, "\n")))
	if err != nil {
		t.Fatalf("ParseOtrosServicios: %v", err)
	}

	doc := Aggregate(set.Usuarios, Collections{Consultas: consultas, OtrosServicios: otros}, "900123456", "FE1")
	flat := Flatten(doc)

	assertRows(t, "usuarios", flat.Usuarios, usuariosIn)
	assertRows(t, "consultas", flat.Services[KindConsultas], consultasIn)
	assertRows(t, "otrosServicios", flat.Services[KindOtrosServicios], otrosIn)

	for _, k := range []ServiceKind{KindProcedimientos, KindUrgencias, KindHospitalizacion, KindMedicamentos} {
		if _, ok := flat.Services[k]; ok {
			t.Errorf("expected %s omitted", k)
		}
	}
	if got := flat.Services[KindConsultas].Header[0]; got != "numDocIdPaciente" {
		t.Errorf("expected first consultas column numDocIdPaciente, got %q", got)
	}
}

func assertRows(t *testing.T, name string, table *Table, want []string) {
	t.Helper()
	if table == nil {
		t.Fatalf("%s: expected table, got nil", name)
	}
	if len(table.Rows) != len(want) {
		t.Fatalf("%s: expected %d rows, got %d", name, len(want), len(table.Rows))
	}
	for i, row := range table.Rows {
		if got := strings.Join(row, ","); got != want[i] {
			t.Errorf("%s row %d:\nexpected %s\ngot      %s", name, i, want[i], got)
		}
	}
}

func TestFlattenTransaccion(t *testing.T) {
	doc := Document{NumDocumentoIdObligado: "900", NumFactura: "FE9", NumNota: Some("NC1")}
	flat := Flatten(doc)

	want := "numDocumentoIdObligado,900\nnumFactura,FE9\ntipoNota,\nnumNota,NC1\n"
	if got := flat.TransaccionCSV(); got != want {
		t.Errorf("expected transaccion CSV %q, got %q", want, got)
	}
}

func TestFlattenNoUsuarios(t *testing.T) {
	flat := Flatten(Document{NumDocumentoIdObligado: "900", NumFactura: "FE9"})

	if flat.Usuarios == nil || flat.Usuarios.CSV() != "" {
		t.Errorf("expected empty usuarios CSV")
	}
	if len(flat.Services) != 2 {
		t.Errorf("expected only consultas and procedimientos, got %d kinds", len(flat.Services))
	}
	if flat.Services[KindConsultas].CSV() != "" || flat.Services[KindProcedimientos].CSV() != "" {
		t.Error("expected empty consultas and procedimientos CSV")
	}
}

func TestTableCSVQuoting(t *testing.T) {
	table := &Table{
		Header: []string{"a", "b"},
		Rows:   [][]string{{`x,y`, `say "hi"`}},
	}
	want := "a,b\n\"x,y\",\"say \"\"hi\"\"\"\n"
	if got := table.CSV(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestFlattenWriteFiles(t *testing.T) {
	doc := Aggregate(testUsuarios("1"), Collections{
		Procedimientos: []Entry[Procedimiento]{{Patient: "1", Record: Procedimiento{CodProcedimiento: "881112"}}},
	}, "900", "FE1")

	dir := t.TempDir()
	paths, err := Flatten(doc).WriteFiles(dir)
	if err != nil {
		t.Fatalf("WriteFiles: %v", err)
	}
	if len(paths) != 3 {
		t.Fatalf("expected 3 files, got %v", paths)
	}
	data, err := os.ReadFile(filepath.Join(dir, "procedimientos.csv"))
	if err != nil {
		t.Fatalf("read procedimientos.csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and 1 row, got %d lines", len(lines))
	}
	if !strings.Contains(lines[1], "881112") {
		t.Errorf("expected procedure code in row, got %q", lines[1])
	}
	if _, err := os.Stat(filepath.Join(dir, "consultas.csv")); !os.IsNotExist(err) {
		t.Errorf("expected no consultas.csv, got err=%v", err)
	}
}
