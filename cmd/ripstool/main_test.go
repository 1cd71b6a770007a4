package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/parquet-go/parquet-go"

	"ripstool/export"
	"ripstool/rips"
)

const (
	usuariosFile  = "CC,555,01,01/02/1990,M,170,11001,01,NO,170,1\nTI,777,01,03/04/2012,F,170,11001,01,NO,170,2\n"
	consultasFile = "555,110010001,01/03/2024 08:30,,890201,01,01,325,15,38,A09X,,,,01,CC,555,35000,05,0,,\n" +
		"777,110010001,02/03/2024 09:30,,890201,01,01,325,15,38,A09X,,,,01,TI,777,35000,05,0,,\n"

	invoiceFile = `<?xml version="1.0" encoding="UTF-8"?>
<Invoice xmlns="urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"
  xmlns:cac="urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
  xmlns:cbc="urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2">
  <cbc:ID>FE900</cbc:ID>
  <cbc:UUID>cufe-900</cbc:UUID>
  <cbc:IssueDate>2024-05-02</cbc:IssueDate>
  <cac:LegalMonetaryTotal><cbc:LineExtensionAmount>10000</cbc:LineExtensionAmount></cac:LegalMonetaryTotal>
</Invoice>`
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, args ...string) error {
	t.Helper()
	chdirTest(t, t.TempDir())
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestGenerateCommand(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	us := writeFile(t, in, "US.txt", usuariosFile)
	ac := writeFile(t, in, "AC.txt", consultasFile)

	err := run(t, "generate", "--usuarios", us, "--consultas", ac,
		"--obligado", "900123456", "--factura", "fe55", "--out", out, "--parquet")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	f, err := os.Open(filepath.Join(out, "FE55.JSON"))
	if err != nil {
		t.Fatalf("expected FE55.JSON: %v", err)
	}
	defer f.Close()
	doc, err := rips.ReadDocument(f)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if len(doc.Usuarios) != 2 || doc.ServiceCount() != 2 {
		t.Errorf("expected 2 usuarios and 2 services, got %d/%d", len(doc.Usuarios), doc.ServiceCount())
	}

	rows, err := parquet.ReadFile[export.ServiceRow](filepath.Join(out, "FE55-servicios.parquet"))
	if err != nil {
		t.Fatalf("read parquet: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("expected 2 service rows, got %d", len(rows))
	}
}

func TestGenerateCommandFormatError(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	us := writeFile(t, in, "US.txt", "CC,555\n")

	err := run(t, "generate", "--usuarios", us, "--obligado", "900", "--factura", "FE1", "--out", out)
	if err == nil {
		t.Fatal("expected error for malformed usuarios")
	}
	entries, _ := os.ReadDir(out)
	if len(entries) != 0 {
		t.Errorf("expected no output on failure, got %d files", len(entries))
	}
}

func TestGenerateCommandRejectsFacturaPath(t *testing.T) {
	in := t.TempDir()
	root := t.TempDir()
	out := filepath.Join(root, "out")
	us := writeFile(t, in, "US.txt", usuariosFile)

	err := run(t, "generate", "--usuarios", us, "--obligado", "900", "--factura", "../FE1", "--out", out)
	if !errors.Is(err, rips.ErrInvalidFactura) {
		t.Fatalf("expected ErrInvalidFactura, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "FE1.JSON")); !os.IsNotExist(err) {
		t.Errorf("expected nothing written outside the output dir, got %v", err)
	}
}

func TestFlattenAndConsolidateCommands(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	us := writeFile(t, in, "US.txt", usuariosFile)
	ac := writeFile(t, in, "AC.txt", consultasFile)

	if err := run(t, "generate", "--usuarios", us, "--consultas", ac,
		"--obligado", "900", "--factura", "FE1", "--out", in); err != nil {
		t.Fatalf("generate: %v", err)
	}
	writeFile(t, in, "broken.json", `{"numFactura": 1}`)

	if err := run(t, "flatten", filepath.Join(in, "FE1.JSON"), "--out", out); err != nil {
		t.Fatalf("flatten: %v", err)
	}
	consultas, err := os.ReadFile(filepath.Join(out, "FE1", "consultas.csv"))
	if err != nil {
		t.Fatalf("expected consultas.csv: %v", err)
	}
	if got := strings.Count(strings.TrimSpace(string(consultas)), "\n"); got != 2 {
		t.Errorf("expected header plus 2 rows, got %d newlines", got)
	}

	// expandSources matches the extension case-insensitively, so FE1.JSON is
	// picked up next to broken.json.
	if err := run(t, "consolidate", in, "--out", out, "--format", "json"); err != nil {
		t.Fatalf("consolidate: %v", err)
	}
	matches, _ := filepath.Glob(filepath.Join(out, "rips-consolidado-*.json"))
	if len(matches) != 1 {
		t.Fatalf("expected one consolidated file, got %v", matches)
	}
}

func TestInvoicesCommand(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeFile(t, in, "a.xml", invoiceFile)
	writeFile(t, in, "b.xml", "<NotAnInvoice/>")

	if err := run(t, "invoices", in, "--out", out); err != nil {
		t.Fatalf("invoices: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(out, "facturas_electronicas.csv"))
	if err != nil {
		t.Fatalf("expected CSV: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and 1 record, got %d lines", len(lines))
	}
	if !strings.Contains(lines[1], "FE900") {
		t.Errorf("expected FE900 in record, got %q", lines[1])
	}
}

func TestInvoicesCommandNothingFound(t *testing.T) {
	in := t.TempDir()
	writeFile(t, in, "b.xml", "<NotAnInvoice/>")

	if err := run(t, "invoices", in, "--out", t.TempDir()); err == nil {
		t.Fatal("expected error when no invoices are found")
	}
}

func TestLoadRequiresDatabase(t *testing.T) {
	t.Setenv("RIPSTOOL_DATABASE_URL", "")
	if err := run(t, "load", "--rips", t.TempDir()); err == nil {
		t.Fatal("expected error without database url")
	}
}

func TestExpandSources(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.xml", "x")
	writeFile(t, dir, "a.XML", "x")
	writeFile(t, dir, "c.txt", "x")

	sources, err := expandSources([]string{dir}, ".xml")
	if err != nil {
		t.Fatalf("expandSources: %v", err)
	}
	if len(sources) != 2 || sources[0].Name() != "a.XML" || sources[1].Name() != "b.xml" {
		t.Errorf("unexpected sources: %v", sources)
	}
	if _, err := expandSources([]string{filepath.Join(dir, "missing")}, ".xml"); err == nil {
		t.Error("expected error for missing path")
	}
}
