package rips

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// ReadDocument decodes a RIPS JSON document with DecodeDocument.
func ReadDocument(r io.Reader) (Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Document{}, fmt.Errorf("read rips document: %w", err)
	}
	return DecodeDocument(data)
}

// WriteJSON encodes the document indented by two spaces.
func (d Document) WriteJSON(w io.Writer) error {
	if d.Usuarios == nil {
		d.Usuarios = []Usuario{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode rips document: %w", err)
	}
	return nil
}

// ServiceCount returns the number of service records across all usuarios.
func (d Document) ServiceCount() int {
	n := 0
	for _, u := range d.Usuarios {
		n += u.Servicios.Count()
	}
	return n
}

// FileName is the download name of a complete document, e.g. "FE123.JSON".
func FileName(numFactura string) string {
	return strings.ToUpper(numFactura + ".json")
}

// DatedFileName is the download name of a partial document,
// e.g. "FE123_2024-03-01.JSON".
func DatedFileName(numFactura string, date time.Time) string {
	return strings.ToUpper(fmt.Sprintf("%s_%s.json", numFactura, date.Format("2006-01-02")))
}
