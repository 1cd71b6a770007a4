package invoice

import (
	"testing"
)

func TestAttachedDocumentHandlerNestedInvoice(t *testing.T) {
	xml := `<AttachedDocument xmlns:cbc="urn:x"><cbc:ParentDocumentID>FE9</cbc:ParentDocumentID>` +
		`<Wrapper><Invoice><cbc:ID>FE9</cbc:ID></Invoice></Wrapper></AttachedDocument>`
	doc, err := parseXML([]byte(xml))
	if err != nil {
		t.Fatalf("parseXML: %v", err)
	}

	h := AttachedDocumentHandler{}
	if !h.Detect(doc) {
		t.Fatal("expected AttachedDocument detected")
	}
	locs := h.Extract(doc)
	if len(locs) != 1 {
		t.Fatalf("expected 1 invoice, got %d", len(locs))
	}
	if locs[0].Invoice.Tag != "Invoice" || locs[0].Wrapper == nil || locs[0].DirectSubstitute {
		t.Errorf("unexpected location %+v", locs[0])
	}
}

func TestAttachedDocumentHandlerNoIdentifiers(t *testing.T) {
	doc, err := parseXML([]byte(`<AttachedDocument><Description>plain text</Description></AttachedDocument>`))
	if err != nil {
		t.Fatalf("parseXML: %v", err)
	}
	if locs := (AttachedDocumentHandler{}).Extract(doc); len(locs) != 0 {
		t.Errorf("expected no invoices, got %d", len(locs))
	}
}

func TestDirectInvoiceHandler(t *testing.T) {
	doc, err := parseXML([]byte(multiInvoiceXML))
	if err != nil {
		t.Fatalf("parseXML: %v", err)
	}
	h := DirectInvoiceHandler{}
	if !h.Detect(doc) {
		t.Fatal("expected invoices detected")
	}
	if got := len(h.Extract(doc)); got != 3 {
		t.Errorf("expected 3 invoice elements, got %d", got)
	}
	if (AttachedDocumentHandler{}).Detect(doc) {
		t.Error("expected no AttachedDocument in a plain batch")
	}

	root, err := parseXML([]byte(`<Invoice><ID>1</ID></Invoice>`))
	if err != nil {
		t.Fatalf("parseXML: %v", err)
	}
	locs := h.Extract(root)
	if len(locs) != 1 || locs[0].Invoice != root.Root() {
		t.Errorf("expected the root invoice, got %+v", locs)
	}
}

func TestDefaultHandlersOrder(t *testing.T) {
	hs := DefaultHandlers()
	if len(hs) != 2 || hs[0].Name() != "AttachedDocument" || hs[1].Name() != "Invoice" {
		t.Errorf("unexpected handler order")
	}
}
