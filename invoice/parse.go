package invoice

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"ripstool/internal/batch"
)

var (
	// ErrEmptyDocument is returned for an empty or whitespace-only file.
	ErrEmptyDocument = errors.New("empty XML document")
	// ErrNoInvoices is returned when no handler finds a usable invoice.
	ErrNoInvoices = errors.New("no valid invoices found")
)

// Parser runs the structure handlers over XML documents.
type Parser struct {
	handlers  []StructureHandler
	extractor *Extractor
	log       zerolog.Logger
}

func NewParser(logger zerolog.Logger) *Parser {
	return &Parser{
		handlers:  DefaultHandlers(),
		extractor: NewExtractor(),
		log:       logger,
	}
}

// WithExtractor replaces the extractor, mainly to pin the clock in tests.
func (p *Parser) WithExtractor(x *Extractor) *Parser {
	p.extractor = x
	return p
}

// ParseDocument extracts every invoice line of one XML file. Handlers are
// tried in order and the first one producing records wins.
func (p *Parser) ParseDocument(data []byte) ([]InvoiceData, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyDocument
	}
	doc, err := parseXML(data)
	if err != nil {
		return nil, fmt.Errorf("parse XML: %w", err)
	}
	if doc.Root() == nil {
		return nil, ErrEmptyDocument
	}

	for _, h := range p.handlers {
		if !h.Detect(doc) {
			continue
		}
		var records []InvoiceData
		for _, loc := range h.Extract(doc) {
			rows, err := p.extractor.Extract(loc)
			if errors.Is(err, ErrUnparseableDocument) {
				p.log.Debug().Str("handler", h.Name()).Msg("skipping invoice without CUFE or number")
				continue
			}
			if err != nil {
				return nil, err
			}
			records = append(records, rows...)
		}
		if len(records) > 0 {
			p.log.Debug().Str("handler", h.Name()).Int("records", len(records)).Msg("extracted invoices")
			return records, nil
		}
	}
	return nil, ErrNoInvoices
}

// FileResult is the outcome of one XML file.
type FileResult struct {
	FileName string `json:"fileName"`
	Records  int    `json:"records"`
	Error    string `json:"error,omitempty"`
	Err      error  `json:"-"`
}

// BatchResult collects the records of every file that parsed.
type BatchResult struct {
	Files    []FileResult  `json:"files"`
	Invoices []InvoiceData `json:"invoices"`
}

// Succeeded returns the number of files that produced records.
func (r BatchResult) Succeeded() int {
	n := 0
	for _, f := range r.Files {
		if f.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the number of files that produced nothing.
func (r BatchResult) Failed() int { return len(r.Files) - r.Succeeded() }

// ParseBatch processes the sources one at a time; a failing file is recorded
// and does not stop the rest.
func (p *Parser) ParseBatch(sources []batch.Source) BatchResult {
	var res BatchResult
	counts := make([]int, 0, len(sources))
	outcomes := batch.Run(p.log, sources, func(name string, data []byte) error {
		records, err := p.ParseDocument(data)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		res.Invoices = append(res.Invoices, records...)
		counts = append(counts, len(records))
		return nil
	})

	next := 0
	for _, o := range outcomes {
		fr := FileResult{FileName: o.Name, Err: o.Err}
		if o.Err != nil {
			fr.Error = o.Err.Error()
		} else {
			fr.Records = counts[next]
			next++
		}
		res.Files = append(res.Files, fr)
	}
	if res.Invoices == nil {
		res.Invoices = []InvoiceData{}
	}
	return res
}
