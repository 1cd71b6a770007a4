package rips

import (
	"errors"
	"strings"
	"testing"
	"time"
)

const (
	usuarioLine       = "CC,555,01,01/02/1990,M,170,11001,01,NO,170,1"
	medicamentoLine   = "555,110010001,,,05/03/2024 10:00,J189,,01,19943544-1,ACETAMINOFEN,500,168,COMPRIMIDO,70,20.5,5,CC,555,150,3075,05,0,,3"
	procedimientoLine = "555,110010001,02/03/2024 09:00,,,879111,01,01,01,325,15,CC,555,A09X,,,120000,05,0,,"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
	}{
		{"", ModeFull},
		{"full", ModeFull},
		{"DATA", ModeData},
		{" med ", ModeMed},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if err != nil {
			t.Errorf("ParseMode(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q): expected %s, got %s", tt.in, tt.want, got)
		}
	}
	if _, err := ParseMode("partial"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestModeFileName(t *testing.T) {
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	if got := ModeFull.FileName("fe1", date); got != "FE1.JSON" {
		t.Errorf("expected FE1.JSON, got %s", got)
	}
	if got := ModeMed.FileName("fe1", date); got != "FE1_2024-03-01.JSON" {
		t.Errorf("expected FE1_2024-03-01.JSON, got %s", got)
	}
}

func TestGenerateFull(t *testing.T) {
	p := newTestParser()
	doc, err := p.Generate(ModeFull, Inputs{
		Usuarios:     strings.NewReader(usuarioLine + "\n"),
		Consultas:    strings.NewReader(strings.Replace(consultaLine, "123,", "555,", 1) + "\n"),
		Medicamentos: strings.NewReader(medicamentoLine + "\n"),
	}, "900123456", "fe100")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if doc.NumFactura != "FE100" {
		t.Errorf("expected FE100, got %s", doc.NumFactura)
	}
	if len(doc.Usuarios) != 1 {
		t.Fatalf("expected 1 usuario, got %d", len(doc.Usuarios))
	}
	s := doc.Usuarios[0].Servicios
	if len(s.Consultas) != 1 || len(s.Medicamentos) != 1 {
		t.Errorf("expected 1 consulta and 1 medicamento, got %d/%d", len(s.Consultas), len(s.Medicamentos))
	}
	if s.Medicamentos[0].Consecutivo != 1 {
		t.Errorf("expected medicamento renumbered to 1, got %d", s.Medicamentos[0].Consecutivo)
	}
}

func TestGenerateDataIgnoresMedicamentos(t *testing.T) {
	doc, err := newTestParser().Generate(ModeData, Inputs{
		Usuarios:       strings.NewReader(usuarioLine + "\n"),
		Procedimientos: strings.NewReader(procedimientoLine + "\n"),
		Medicamentos:   strings.NewReader("not,even,close\n"),
	}, "900123456", "FE100")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	s := doc.Usuarios[0].Servicios
	if len(s.Procedimientos) != 1 {
		t.Errorf("expected 1 procedimiento, got %d", len(s.Procedimientos))
	}
	if s.Medicamentos != nil {
		t.Errorf("expected medicamentos absent, got %d", len(s.Medicamentos))
	}
}

func TestGenerateMissingInputs(t *testing.T) {
	p := newTestParser()
	cases := []struct {
		name     string
		in       Inputs
		obligado string
		factura  string
	}{
		{"no usuarios", Inputs{}, "900", "FE1"},
		{"no obligado", Inputs{Usuarios: strings.NewReader(usuarioLine)}, " ", "FE1"},
		{"no factura", Inputs{Usuarios: strings.NewReader(usuarioLine)}, "900", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := p.Generate(ModeFull, tc.in, tc.obligado, tc.factura)
			if !errors.Is(err, ErrMissingInput) {
				t.Errorf("expected ErrMissingInput, got %v", err)
			}
		})
	}
}

func TestGenerateRejectsUnsafeFactura(t *testing.T) {
	for _, factura := range []string{"../FE1", "out/FE1", `FE\1`, `FE"1`} {
		_, err := newTestParser().Generate(ModeFull, Inputs{Usuarios: strings.NewReader(usuarioLine)}, "900", factura)
		if !errors.Is(err, ErrInvalidFactura) {
			t.Errorf("expected ErrInvalidFactura for %q, got %v", factura, err)
		}
	}
	if _, err := newTestParser().Generate(ModeFull, Inputs{Usuarios: strings.NewReader(usuarioLine)}, "900", "FE..1"); err != nil {
		t.Errorf("expected FE..1 to be accepted, got %v", err)
	}
}

func TestGenerateFormatErrorAborts(t *testing.T) {
	_, err := newTestParser().Generate(ModeFull, Inputs{
		Usuarios:  strings.NewReader(usuarioLine + "\n"),
		Consultas: strings.NewReader("555,too,short\n"),
	}, "900", "FE1")
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FormatError, got %v", err)
	}
	if fe.Entity != "consultas" || fe.Line != 1 {
		t.Errorf("unexpected error location: %s line %d", fe.Entity, fe.Line)
	}
}
