package invoice

import (
	"strings"

	"github.com/beevik/etree"
)

// CustomTagValue looks up a health-sector name/value pair. It searches, in
// order, the CustomTagGeneral/Interoperabilidad/Group/Collection path, any
// AdditionalInformation element, and finally the older flat
// CustomTagGeneral layout. Names match exactly.
func CustomTagValue(scope *etree.Element, name string) string {
	nested := FindAllPath(scope, "CustomTagGeneral", "Interoperabilidad", "Group", "Collection", "AdditionalInformation")
	if v, ok := matchNameValue(nested, name); ok {
		return v
	}
	if v, ok := matchNameValue(FindAllByLocalName(scope, "AdditionalInformation"), name); ok {
		return v
	}
	if v, ok := matchNameValue(FindAllByLocalName(scope, "CustomTagGeneral"), name); ok {
		return v
	}
	return ""
}

func matchNameValue(candidates []*etree.Element, name string) (string, bool) {
	for _, c := range candidates {
		if textOf(c, "Name") == name {
			return textOf(c, "Value"), true
		}
	}
	return "", false
}

// CustomFieldValue returns the Value attribute of the first CustomField
// element whose Name attribute equals name.
func CustomFieldValue(scope *etree.Element, name string) string {
	for _, f := range FindAllByLocalName(scope, "CustomField") {
		if n, ok := attrValue(f, "Name"); ok && n == name {
			v, _ := attrValue(f, "Value")
			return strings.TrimSpace(v)
		}
	}
	return ""
}
