package rips

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// FormatError reports a line of an entity file that does not match the
// entity's fixed layout.
type FormatError struct {
	Entity string
	Line   int // 1-based, blank lines not counted
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s line %d: %s: %v", e.Entity, e.Line, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s line %d: %s", e.Entity, e.Line, e.Reason)
}

func (e *FormatError) Unwrap() error { return e.Err }

// UsuarioSet is the result of parsing a usuarios file. Records whose
// document number was already seen are kept apart in Duplicates.
type UsuarioSet struct {
	Usuarios   []Usuario
	Duplicates []Usuario
}

// Parser turns comma-delimited RIPS entity files into typed records.
type Parser struct {
	log zerolog.Logger
}

func NewParser(logger zerolog.Logger) *Parser {
	return &Parser{log: logger}
}

// readRecords reads every non-blank record of a headerless CSV stream.
func readRecords(r io.Reader) ([][]string, error) {
	bufReader := bufio.NewReaderSize(r, 64*1024)

	// Skip UTF-8 BOM if present
	bom, err := bufReader.Peek(3)
	if err == nil && len(bom) >= 3 && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		bufReader.Discard(3)
	}

	reader := csv.NewReader(bufReader)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	var records [][]string
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// fill assigns fields to rec in column order.
func fill[T any](rec *T, cols []column[T], fields []string, entity string, line int) error {
	for i, c := range cols {
		if err := c.set(rec, fields[i], line); err != nil {
			return &FormatError{Entity: entity, Line: line, Reason: "column " + c.name, Err: err}
		}
	}
	return nil
}

func widthError(entity string, line, want, got int) error {
	return &FormatError{
		Entity: entity,
		Line:   line,
		Reason: fmt.Sprintf("expected %d columns, got %d", want, got),
	}
}

// ParseUsuarios parses a usuarios file (11 columns). The first record with a
// given numDocumentoIdentificacion wins; later ones go to Duplicates.
func (p *Parser) ParseUsuarios(r io.Reader) (UsuarioSet, error) {
	const entity = "usuarios"
	records, err := readRecords(r)
	if err != nil {
		return UsuarioSet{}, fmt.Errorf("read %s: %w", entity, err)
	}

	set := UsuarioSet{Usuarios: make([]Usuario, 0, len(records))}
	seen := make(map[string]bool, len(records))
	for i, fields := range records {
		line := i + 1
		if len(fields) != len(usuarioColumns) {
			return UsuarioSet{}, widthError(entity, line, len(usuarioColumns), len(fields))
		}
		var u Usuario
		if err := fill(&u, usuarioColumns, fields, entity, line); err != nil {
			return UsuarioSet{}, err
		}
		if !u.TipoDocumentoIdentificacion.Valid() {
			p.log.Warn().
				Str("tipoDocumentoIdentificacion", string(u.TipoDocumentoIdentificacion)).
				Int("line", line).
				Msg("unknown document type")
		}
		if seen[u.NumDocumentoIdentificacion] {
			p.log.Warn().
				Str("numDocumentoIdentificacion", u.NumDocumentoIdentificacion).
				Int("line", line).
				Msg("duplicate usuario")
			set.Duplicates = append(set.Duplicates, u)
			continue
		}
		seen[u.NumDocumentoIdentificacion] = true
		set.Usuarios = append(set.Usuarios, u)
	}

	p.log.Debug().Str("entity", entity).
		Int("records", len(set.Usuarios)).
		Int("duplicates", len(set.Duplicates)).
		Msg("parsed")
	return set, nil
}

func parseEntries[T any](p *Parser, entity string, r io.Reader, cols []column[T]) ([]Entry[T], error) {
	records, err := readRecords(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", entity, err)
	}

	want := len(cols) + 1
	entries := make([]Entry[T], 0, len(records))
	for i, fields := range records {
		line := i + 1
		if len(fields) != want {
			return nil, widthError(entity, line, want, len(fields))
		}
		var rec T
		if err := fill(&rec, cols, fields[1:], entity, line); err != nil {
			return nil, err
		}
		entries = append(entries, Entry[T]{Patient: strings.TrimSpace(fields[0]), Record: rec})
	}

	p.log.Debug().Str("entity", entity).Int("records", len(entries)).Msg("parsed")
	return entries, nil
}

// ParseConsultas parses a consultas file (22 columns).
func (p *Parser) ParseConsultas(r io.Reader) ([]Entry[Consulta], error) {
	return parseEntries(p, "consultas", r, consultaColumns)
}

// ParseProcedimientos parses a procedimientos file (21 columns).
func (p *Parser) ParseProcedimientos(r io.Reader) ([]Entry[Procedimiento], error) {
	return parseEntries(p, "procedimientos", r, procedimientoColumns)
}

// ParseUrgencias parses an urgencias file (13 columns).
func (p *Parser) ParseUrgencias(r io.Reader) ([]Entry[Urgencia], error) {
	return parseEntries(p, "urgencias", r, urgenciaColumns)
}

// ParseHospitalizaciones parses a hospitalizacion file (16 columns).
func (p *Parser) ParseHospitalizaciones(r io.Reader) ([]Entry[Hospitalizacion], error) {
	return parseEntries(p, "hospitalizacion", r, hospitalizacionColumns)
}

// ParseMedicamentos parses a medicamentos file (24 columns).
func (p *Parser) ParseMedicamentos(r io.Reader) ([]Entry[Medicamento], error) {
	return parseEntries(p, "medicamentos", r, medicamentoColumns)
}

// ParseOtrosServicios parses an otros servicios file (17 columns).
func (p *Parser) ParseOtrosServicios(r io.Reader) ([]Entry[OtroServicio], error) {
	return parseEntries(p, "otrosServicios", r, otroServicioColumns)
}
