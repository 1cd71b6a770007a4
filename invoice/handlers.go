package invoice

import (
	"strings"

	"github.com/beevik/etree"
)

// Located is an invoice element found inside an XML document.
type Located struct {
	// Invoice is the element holding the invoice fields.
	Invoice *etree.Element
	// Wrapper is the enclosing AttachedDocument, if any.
	Wrapper *etree.Element
	// DirectSubstitute marks an AttachedDocument standing in for an invoice
	// it did not embed. Header fields are then read from its own level.
	DirectSubstitute bool
}

// StructureHandler locates invoices inside one shape of XML envelope.
type StructureHandler interface {
	Name() string
	Detect(doc *etree.Document) bool
	Extract(doc *etree.Document) []Located
}

// DefaultHandlers returns the handlers in the order they are tried.
func DefaultHandlers() []StructureHandler {
	return []StructureHandler{
		AttachedDocumentHandler{},
		DirectInvoiceHandler{},
	}
}

// AttachedDocumentHandler handles the DIAN AttachedDocument envelope, which
// usually carries the invoice as CDATA inside a Description element.
type AttachedDocumentHandler struct{}

func (AttachedDocumentHandler) Name() string { return "AttachedDocument" }

func (AttachedDocumentHandler) Detect(doc *etree.Document) bool {
	return wrapperOf(doc) != nil
}

func (h AttachedDocumentHandler) Extract(doc *etree.Document) []Located {
	wrapper := wrapperOf(doc)
	if wrapper == nil {
		return nil
	}

	if inv := FindByLocalName(wrapper, "Invoice"); inv != nil {
		return []Located{{Invoice: inv, Wrapper: wrapper}}
	}

	for _, desc := range FindAllByLocalName(wrapper, "Description") {
		text := strings.TrimSpace(TextContent(desc))
		if !strings.Contains(text, "<Invoice") || !strings.Contains(text, "xmlns") {
			continue
		}
		embedded, err := parseXML([]byte(text))
		if err != nil {
			return directFallback(wrapper)
		}
		if inv := invoiceIn(embedded); inv != nil {
			return []Located{{Invoice: inv, Wrapper: wrapper}}
		}
		return nil
	}

	return directFallback(wrapper)
}

// wrapperOf returns the AttachedDocument element of doc, root included.
func wrapperOf(doc *etree.Document) *etree.Element {
	if root := doc.Root(); root != nil && root.Tag == "AttachedDocument" {
		return root
	}
	return FindByLocalName(&doc.Element, "AttachedDocument")
}

func invoiceIn(doc *etree.Document) *etree.Element {
	if root := doc.Root(); root != nil && root.Tag == "Invoice" {
		return root
	}
	return FindByLocalName(&doc.Element, "Invoice")
}

// directFallback treats the wrapper itself as the invoice when it at least
// names the invoice it belongs to.
func directFallback(wrapper *etree.Element) []Located {
	if textOf(wrapper, "ParentDocumentID") != "" || textOf(wrapper, "UUID") != "" {
		return []Located{{Invoice: wrapper, DirectSubstitute: true}}
	}
	return nil
}

// DirectInvoiceHandler handles documents with Invoice elements at the root or
// anywhere below it, including batch files with several invoices.
type DirectInvoiceHandler struct{}

func (DirectInvoiceHandler) Name() string { return "Invoice" }

func (DirectInvoiceHandler) Detect(doc *etree.Document) bool {
	return FindByLocalName(&doc.Element, "Invoice") != nil
}

func (DirectInvoiceHandler) Extract(doc *etree.Document) []Located {
	seen := make(map[*etree.Element]bool)
	var out []Located
	for _, inv := range FindAllByLocalName(&doc.Element, "Invoice") {
		if seen[inv] {
			continue
		}
		seen[inv] = true
		out = append(out, Located{Invoice: inv})
	}
	return out
}
