package invoice

import (
	"strings"

	"github.com/beevik/etree"
)

// Lookups in this package match elements by local name only. Colombian
// invoices mix cbc:, cac:, sts: and unprefixed tags freely, so prefixes and
// namespaces are ignored throughout.

// FindByLocalName returns the first descendant of node, in document order,
// whose local name is name.
func FindByLocalName(node *etree.Element, name string) *etree.Element {
	if node == nil {
		return nil
	}
	for _, c := range node.ChildElements() {
		if c.Tag == name {
			return c
		}
		if found := FindByLocalName(c, name); found != nil {
			return found
		}
	}
	return nil
}

// FindAllByLocalName returns every descendant of node named name, in
// document order.
func FindAllByLocalName(node *etree.Element, name string) []*etree.Element {
	var out []*etree.Element
	var walk func(*etree.Element)
	walk = func(e *etree.Element) {
		for _, c := range e.ChildElements() {
			if c.Tag == name {
				out = append(out, c)
			}
			walk(c)
		}
	}
	if node != nil {
		walk(node)
	}
	return out
}

// FindAllPath returns the elements reached by following names as a chain of
// descendant steps, like the CSS selector "A B C".
func FindAllPath(node *etree.Element, names ...string) []*etree.Element {
	if node == nil {
		return nil
	}
	current := []*etree.Element{node}
	for _, name := range names {
		seen := make(map[*etree.Element]bool)
		var next []*etree.Element
		for _, c := range current {
			for _, e := range FindAllByLocalName(c, name) {
				if !seen[e] {
					seen[e] = true
					next = append(next, e)
				}
			}
		}
		if len(next) == 0 {
			return nil
		}
		current = next
	}
	return current
}

// FindPath returns the first element of FindAllPath, or nil.
func FindPath(node *etree.Element, names ...string) *etree.Element {
	if found := FindAllPath(node, names...); len(found) > 0 {
		return found[0]
	}
	return nil
}

// TextContent concatenates every text and CDATA node below e.
func TextContent(e *etree.Element) string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	var walk func(*etree.Element)
	walk = func(el *etree.Element) {
		for _, tok := range el.Child {
			switch t := tok.(type) {
			case *etree.CharData:
				b.WriteString(t.Data)
			case *etree.Element:
				walk(t)
			}
		}
	}
	walk(e)
	return b.String()
}

// textOf returns the trimmed text of the first element reached by path.
func textOf(node *etree.Element, path ...string) string {
	return strings.TrimSpace(TextContent(FindPath(node, path...)))
}

// firstText tries each name in turn and returns the first non-empty text.
func firstText(node *etree.Element, names ...string) string {
	for _, n := range names {
		if v := textOf(node, n); v != "" {
			return v
		}
	}
	return ""
}

// childText returns the trimmed text of a direct child of e.
func childText(e *etree.Element, name string) string {
	if e == nil {
		return ""
	}
	for _, c := range e.ChildElements() {
		if c.Tag == name {
			return strings.TrimSpace(TextContent(c))
		}
	}
	return ""
}

// attrValue returns the value of the attribute with the given local name.
func attrValue(e *etree.Element, key string) (string, bool) {
	if e == nil {
		return "", false
	}
	for _, a := range e.Attr {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

func parseXML(data []byte) (*etree.Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, err
	}
	return doc, nil
}
