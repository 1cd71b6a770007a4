package rips

import "strings"

// Collections bundles the parsed service files that feed an aggregation.
// Any of them may be nil.
type Collections struct {
	Consultas         []Entry[Consulta]
	Procedimientos    []Entry[Procedimiento]
	Urgencias         []Entry[Urgencia]
	Hospitalizaciones []Entry[Hospitalizacion]
	Medicamentos      []Entry[Medicamento]
	OtrosServicios    []Entry[OtroServicio]
}

// Aggregate nests every service record under the Usuario whose document
// number matches its patient key. Records are renumbered per usuario and
// per kind starting at 1. The caller's slices are left untouched.
func Aggregate(usuarios []Usuario, services Collections, obligadoID, facturaID string) Document {
	doc := Document{
		NumDocumentoIdObligado: obligadoID,
		NumFactura:             strings.ToUpper(facturaID),
		Usuarios:               make([]Usuario, 0, len(usuarios)),
	}
	for _, u := range usuarios {
		key := u.NumDocumentoIdentificacion
		u.Servicios = Servicios{
			Consultas:       collect(services.Consultas, key),
			Procedimientos:  collect(services.Procedimientos, key),
			Urgencias:       collect(services.Urgencias, key),
			Hospitalizacion: collect(services.Hospitalizaciones, key),
			Medicamentos:    collect(services.Medicamentos, key),
			OtrosServicios:  collect(services.OtrosServicios, key),
		}
		doc.Usuarios = append(doc.Usuarios, u)
	}
	return doc
}

// AggregateData builds a document from consultas and procedimientos only.
func AggregateData(usuarios []Usuario, consultas []Entry[Consulta], procedimientos []Entry[Procedimiento], obligadoID, facturaID string) Document {
	return Aggregate(usuarios, Collections{
		Consultas:      consultas,
		Procedimientos: procedimientos,
	}, obligadoID, facturaID)
}

// AggregateDataMed builds a document from medicamentos and otros servicios only.
func AggregateDataMed(usuarios []Usuario, medicamentos []Entry[Medicamento], otros []Entry[OtroServicio], obligadoID, facturaID string) Document {
	return Aggregate(usuarios, Collections{
		Medicamentos:   medicamentos,
		OtrosServicios: otros,
	}, obligadoID, facturaID)
}

type renumberable[T any] interface {
	withConsecutivo(int) T
}

// collect returns the records of one patient in input order, or nil when
// there are none so the kind is omitted from the document.
func collect[T renumberable[T]](entries []Entry[T], patient string) []T {
	var out []T
	for _, e := range entries {
		if e.Patient != patient {
			continue
		}
		out = append(out, e.Record.withConsecutivo(len(out)+1))
	}
	return out
}
