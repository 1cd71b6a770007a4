package rips

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// Mode selects which service files feed a generated document.
type Mode string

const (
	ModeFull Mode = "full" // all six service kinds
	ModeData Mode = "data" // consultas and procedimientos
	ModeMed  Mode = "med"  // medicamentos and otros servicios
)

// ParseMode accepts full, data or med, case-insensitively. Empty means full.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeFull, nil
	case ModeFull, ModeData, ModeMed:
		return m, nil
	}
	return "", fmt.Errorf("unknown mode %q (want full, data or med)", s)
}

// FileName returns the download name of a document generated in mode m.
// Partial documents carry the generation date.
func (m Mode) FileName(numFactura string, now time.Time) string {
	if m == ModeFull {
		return FileName(numFactura)
	}
	return DatedFileName(numFactura, now)
}

var (
	// ErrMissingInput is returned when a required input of Generate is absent.
	ErrMissingInput = errors.New("missing required input")
	// ErrInvalidFactura is returned for an invoice number that cannot name
	// an output file.
	ErrInvalidFactura = errors.New("numFactura must not contain path separators or quotes")
)

// Inputs are the entity files of one invoice. A nil reader means the file
// was not provided; only Usuarios is required.
type Inputs struct {
	Usuarios        io.Reader
	Consultas       io.Reader
	Procedimientos  io.Reader
	Urgencias       io.Reader
	Hospitalizacion io.Reader
	Medicamentos    io.Reader
	OtrosServicios  io.Reader
}

// Generate parses the inputs used by mode and aggregates them into a
// document. Any parse error aborts the whole generation.
func (p *Parser) Generate(mode Mode, in Inputs, obligadoID, facturaID string) (Document, error) {
	obligadoID = strings.TrimSpace(obligadoID)
	facturaID = strings.TrimSpace(facturaID)
	switch {
	case obligadoID == "":
		return Document{}, fmt.Errorf("numDocumentoIdObligado: %w", ErrMissingInput)
	case facturaID == "":
		return Document{}, fmt.Errorf("numFactura: %w", ErrMissingInput)
	case strings.ContainsAny(facturaID, `/\"`):
		return Document{}, fmt.Errorf("numFactura %q: %w", facturaID, ErrInvalidFactura)
	case in.Usuarios == nil:
		return Document{}, fmt.Errorf("usuarios file: %w", ErrMissingInput)
	}

	set, err := p.ParseUsuarios(in.Usuarios)
	if err != nil {
		return Document{}, err
	}

	var c Collections
	if mode == ModeFull || mode == ModeData {
		if c.Consultas, err = parseOptional(in.Consultas, p.ParseConsultas); err != nil {
			return Document{}, err
		}
		if c.Procedimientos, err = parseOptional(in.Procedimientos, p.ParseProcedimientos); err != nil {
			return Document{}, err
		}
	}
	if mode == ModeFull {
		if c.Urgencias, err = parseOptional(in.Urgencias, p.ParseUrgencias); err != nil {
			return Document{}, err
		}
		if c.Hospitalizaciones, err = parseOptional(in.Hospitalizacion, p.ParseHospitalizaciones); err != nil {
			return Document{}, err
		}
	}
	if mode == ModeFull || mode == ModeMed {
		if c.Medicamentos, err = parseOptional(in.Medicamentos, p.ParseMedicamentos); err != nil {
			return Document{}, err
		}
		if c.OtrosServicios, err = parseOptional(in.OtrosServicios, p.ParseOtrosServicios); err != nil {
			return Document{}, err
		}
	}

	var doc Document
	switch mode {
	case ModeData:
		doc = AggregateData(set.Usuarios, c.Consultas, c.Procedimientos, obligadoID, facturaID)
	case ModeMed:
		doc = AggregateDataMed(set.Usuarios, c.Medicamentos, c.OtrosServicios, obligadoID, facturaID)
	default:
		doc = Aggregate(set.Usuarios, c, obligadoID, facturaID)
	}

	p.log.Info().
		Str("mode", string(mode)).
		Str("numFactura", doc.NumFactura).
		Int("usuarios", len(doc.Usuarios)).
		Int("duplicates", len(set.Duplicates)).
		Int("services", doc.ServiceCount()).
		Msg("document generated")
	return doc, nil
}

func parseOptional[T any](r io.Reader, parse func(io.Reader) ([]Entry[T], error)) ([]Entry[T], error) {
	if r == nil {
		return nil, nil
	}
	return parse(r)
}
