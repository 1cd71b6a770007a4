package rips

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Keys whose values decode into int or float64 fields.
var (
	intFields = map[string]bool{
		"consecutivo":       true,
		"codServicio":       true,
		"unidadMedida":      true,
		"unidadMinDispensa": true,
		"diasTratamiento":   true,
	}
	floatFields = map[string]bool{
		"vrServicio":               true,
		"valorPagoModerador":       true,
		"concentracionMedicamento": true,
		"cantidadMedicamento":      true,
		"vrUnitMedicamento":        true,
		"cantidadOS":               true,
		"vrUnitOS":                 true,
	}
	// Keys holding arrays of records.
	recordLists = map[string]bool{
		"usuarios":        true,
		"consultas":       true,
		"procedimientos":  true,
		"urgencias":       true,
		"hospitalizacion": true,
		"medicamentos":    true,
		"otrosServicios":  true,
	}
)

// DecodeDocument decodes a RIPS JSON document, coercing scalar values that
// carry a different JSON type than their field: numeric strings in numeric
// fields use the same prefix rules as delimited input, and numbers or
// booleans in text fields become their literal text. Values that cannot be
// coerced, such as an object in a text field, are dropped.
func DecodeDocument(data []byte) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return Document{}, fmt.Errorf("decode rips document: %w", err)
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return Document{}, errors.New("decode rips document: root is not a JSON object")
	}
	coerceObject(obj)

	normalized, err := json.Marshal(obj)
	if err != nil {
		return Document{}, fmt.Errorf("decode rips document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(normalized, &doc); err != nil {
		return Document{}, fmt.Errorf("decode rips document: %w", err)
	}
	if doc.Usuarios == nil {
		doc.Usuarios = []Usuario{}
	}
	return doc, nil
}

func coerceObject(obj map[string]any) {
	for k, v := range obj {
		switch {
		case recordLists[k]:
			items, ok := v.([]any)
			if !ok {
				delete(obj, k)
				continue
			}
			kept := items[:0]
			for _, item := range items {
				if rec, ok := item.(map[string]any); ok {
					coerceObject(rec)
					kept = append(kept, rec)
				}
			}
			obj[k] = kept
		case k == "servicios":
			rec, ok := v.(map[string]any)
			if !ok {
				delete(obj, k)
				continue
			}
			coerceObject(rec)
		default:
			if cv, ok := coerceScalar(k, v); ok {
				obj[k] = cv
			} else {
				delete(obj, k)
			}
		}
	}
}

func coerceScalar(key string, v any) (any, bool) {
	switch v.(type) {
	case nil:
		return nil, true
	case map[string]any, []any:
		return nil, false
	}

	switch {
	case intFields[key]:
		switch x := v.(type) {
		case string:
			return json.Number(strconv.Itoa(parseIntOr(x, 0))), true
		case json.Number:
			if _, err := x.Int64(); err == nil {
				return x, true
			}
			return json.Number(strconv.Itoa(parseIntOr(x.String(), 0))), true
		}
		return json.Number("0"), true
	case floatFields[key]:
		switch x := v.(type) {
		case string:
			return json.Number(formatFloat(parseFloatOr(x, 0))), true
		case json.Number:
			if _, err := strconv.ParseFloat(x.String(), 64); err == nil {
				return x, true
			}
		}
		return json.Number("0"), true
	}

	switch x := v.(type) {
	case json.Number:
		return x.String(), true
	case bool:
		return strconv.FormatBool(x), true
	}
	return v, true
}
