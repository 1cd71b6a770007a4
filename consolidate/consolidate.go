// Package consolidate merges per-invoice RIPS JSON documents into one
// collection and reports statistics over it.
package consolidate

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"ripstool/internal/batch"
	"ripstool/rips"
)

// ErrInvalidStructure matches every StructuralValidationError.
var ErrInvalidStructure = errors.New("invalid RIPS file structure")

// StructuralValidationError lists the required top-level fields a document
// lacks or carries with the wrong JSON type.
type StructuralValidationError struct {
	File   string
	Fields []string
}

func (e *StructuralValidationError) Error() string {
	return fmt.Sprintf("%s: %v: missing or invalid %s", e.File, ErrInvalidStructure, strings.Join(e.Fields, ", "))
}

func (e *StructuralValidationError) Unwrap() error { return ErrInvalidStructure }

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// FileResult is the outcome of one input file.
type FileResult struct {
	FileName string `json:"fileName"`
	Status   string `json:"status"`
	Message  string `json:"message"`
	Err      error  `json:"-"`
}

// ProcessedData holds the accepted documents and counters derived from them.
type ProcessedData struct {
	TotalFiles       int             `json:"totalFiles"`
	TotalFacturas    int             `json:"totalFacturas"`
	TotalUsuarios    int             `json:"totalUsuarios"`
	TotalServicios   int             `json:"totalServicios"`
	ConsolidatedData []rips.Document `json:"consolidatedData"`
}

// Result pairs the per-file outcomes with the consolidated data.
type Result struct {
	Files []FileResult  `json:"files"`
	Data  ProcessedData `json:"data"`
}

// Succeeded returns the number of accepted files.
func (r Result) Succeeded() int {
	n := 0
	for _, f := range r.Files {
		if f.Status == StatusSuccess {
			n++
		}
	}
	return n
}

// Failed returns the number of rejected files.
func (r Result) Failed() int { return len(r.Files) - r.Succeeded() }

type Consolidator struct {
	log zerolog.Logger
}

func New(logger zerolog.Logger) *Consolidator {
	return &Consolidator{log: logger}
}

// Run decodes every source in order. A file that cannot be read or does not
// look like a RIPS document is reported and skipped.
func (c *Consolidator) Run(sources []batch.Source) Result {
	var docs []rips.Document
	outcomes := batch.Run(c.log, sources, func(name string, data []byte) error {
		doc, err := Decode(name, data)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
		return nil
	})

	res := Result{Files: make([]FileResult, 0, len(outcomes))}
	next := 0
	for _, o := range outcomes {
		if o.Err != nil {
			res.Files = append(res.Files, FileResult{
				FileName: o.Name,
				Status:   StatusError,
				Message:  o.Err.Error(),
				Err:      o.Err,
			})
			continue
		}
		res.Files = append(res.Files, FileResult{
			FileName: o.Name,
			Status:   StatusSuccess,
			Message:  fmt.Sprintf("processed successfully - %d usuarios", len(docs[next].Usuarios)),
		})
		next++
	}
	res.Data = Stats(docs)
	return res
}

// Decode validates the top-level shape of a RIPS JSON document before
// decoding it. Nested fields with a mismatched JSON type are coerced rather
// than rejected.
func Decode(name string, data []byte) (rips.Document, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return rips.Document{}, fmt.Errorf("parse %s: %w", name, err)
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return rips.Document{}, &StructuralValidationError{File: name, Fields: []string{"root object"}}
	}
	var bad []string
	if _, ok := obj["numDocumentoIdObligado"].(string); !ok {
		bad = append(bad, "numDocumentoIdObligado")
	}
	if _, ok := obj["numFactura"].(string); !ok {
		bad = append(bad, "numFactura")
	}
	if _, ok := obj["usuarios"].([]any); !ok {
		bad = append(bad, "usuarios")
	}
	if len(bad) > 0 {
		return rips.Document{}, &StructuralValidationError{File: name, Fields: bad}
	}

	doc, err := rips.DecodeDocument(data)
	if err != nil {
		return rips.Document{}, fmt.Errorf("%s: %w", name, err)
	}
	return doc, nil
}

// Stats recomputes the counters over docs.
func Stats(docs []rips.Document) ProcessedData {
	pd := ProcessedData{
		TotalFiles:       len(docs),
		TotalFacturas:    len(docs),
		ConsolidatedData: docs,
	}
	if pd.ConsolidatedData == nil {
		pd.ConsolidatedData = []rips.Document{}
	}
	for _, d := range docs {
		pd.TotalUsuarios += len(d.Usuarios)
		pd.TotalServicios += d.ServiceCount()
	}
	return pd
}
