package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"ripstool/consolidate"
	"ripstool/internal/batch"
	"ripstool/invoice"
	"ripstool/rips"
)

// DocumentStore persists generated documents and extracted invoice lines.
type DocumentStore interface {
	SaveDocument(ctx context.Context, doc rips.Document) (uuid.UUID, error)
	SaveInvoices(ctx context.Context, records []invoice.InvoiceData) (uuid.UUID, int64, error)
}

// Handler provides the RIPS and invoice endpoints.
type Handler struct {
	rips         *rips.Parser
	consolidator *consolidate.Consolidator
	invoices     *invoice.Parser
	store        DocumentStore
	now          func() time.Time
}

func NewHandler(logger zerolog.Logger, store DocumentStore) *Handler {
	return &Handler{
		rips:         rips.NewParser(logger),
		consolidator: consolidate.New(logger),
		invoices:     invoice.NewParser(logger),
		store:        store,
		now:          time.Now,
	}
}

// RegisterRoutes registers the endpoints on the provided route group.
//
//	POST /api/v1/rips/generate      - entity files to RIPS JSON
//	POST /api/v1/rips/flatten       - RIPS JSON to CSV tables
//	POST /api/v1/rips/consolidate   - many RIPS JSON files to one data set
//	POST /api/v1/invoices/extract   - UBL XML files to the invoice CSV
//	POST /api/v1/rips/documents     - store a RIPS JSON document (needs a store)
//	POST /api/v1/invoices/load      - store extracted invoice lines (needs a store)
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/rips/generate", h.Generate)
	g.POST("/rips/flatten", h.Flatten)
	g.POST("/rips/consolidate", h.Consolidate)
	g.POST("/invoices/extract", h.ExtractInvoices)
	if h.store != nil {
		g.POST("/rips/documents", h.StoreDocument)
		g.POST("/invoices/load", h.LoadInvoices)
	}
}

// entityFields maps multipart field names to generator inputs.
var entityFields = []struct {
	name  string
	input func(*rips.Inputs) *io.Reader
}{
	{"usuarios", func(in *rips.Inputs) *io.Reader { return &in.Usuarios }},
	{"consultas", func(in *rips.Inputs) *io.Reader { return &in.Consultas }},
	{"procedimientos", func(in *rips.Inputs) *io.Reader { return &in.Procedimientos }},
	{"urgencias", func(in *rips.Inputs) *io.Reader { return &in.Urgencias }},
	{"hospitalizacion", func(in *rips.Inputs) *io.Reader { return &in.Hospitalizacion }},
	{"medicamentos", func(in *rips.Inputs) *io.Reader { return &in.Medicamentos }},
	{"otrosServicios", func(in *rips.Inputs) *io.Reader { return &in.OtrosServicios }},
}

// Generate handles POST /api/v1/rips/generate. Form fields
// numDocumentoIdObligado, numFactura and mode; one file per entity.
func (h *Handler) Generate(c echo.Context) error {
	mode, err := rips.ParseMode(c.FormValue("mode"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	var in rips.Inputs
	for _, f := range entityFields {
		fh, err := c.FormFile(f.name)
		if errors.Is(err, http.ErrMissingFile) {
			continue
		}
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "invalid upload " + f.name + ": " + err.Error(),
			})
		}
		data, err := batch.ReadAll(upload(fh))
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		*f.input(&in) = bytes.NewReader(data)
	}

	doc, err := h.rips.Generate(mode, in, c.FormValue("numDocumentoIdObligado"), c.FormValue("numFactura"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "failed to generate RIPS: " + err.Error(),
		})
	}

	attachment(c, mode.FileName(doc.NumFactura, h.now()))
	return c.JSONPretty(http.StatusOK, doc, "  ")
}

// Flatten handles POST /api/v1/rips/flatten. The body is a RIPS document;
// the response maps each table name to its CSV text.
func (h *Handler) Flatten(c echo.Context) error {
	data, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "failed to read request body"})
	}
	doc, err := consolidate.Decode("request body", data)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "failed to parse RIPS document: " + err.Error(),
		})
	}

	flat := rips.Flatten(doc)
	tables := map[string]string{
		"transaccional": flat.TransaccionCSV(),
		"usuarios":      flat.Usuarios.CSV(),
	}
	for kind, t := range flat.Services {
		tables[kind.String()] = t.CSV()
	}
	return c.JSON(http.StatusOK, tables)
}

type consolidateResponse struct {
	Succeeded int                       `json:"succeeded"`
	Failed    int                       `json:"failed"`
	Files     []consolidate.FileResult  `json:"files"`
	Data      consolidate.ProcessedData `json:"data"`
}

// Consolidate handles POST /api/v1/rips/consolidate with one or more "files".
func (h *Handler) Consolidate(c echo.Context) error {
	sources, err := uploadedFiles(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	res := h.consolidator.Run(sources)
	return c.JSON(http.StatusOK, consolidateResponse{
		Succeeded: res.Succeeded(),
		Failed:    res.Failed(),
		Files:     res.Files,
		Data:      res.Data,
	})
}

// ExtractInvoices handles POST /api/v1/invoices/extract. The response is
// the semicolon CSV, or the batch result as JSON with ?format=json.
func (h *Handler) ExtractInvoices(c echo.Context) error {
	sources, err := uploadedFiles(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	res := h.invoices.ParseBatch(sources)
	c.Response().Header().Set("X-Files-Succeeded", strconv.Itoa(res.Succeeded()))
	c.Response().Header().Set("X-Files-Failed", strconv.Itoa(res.Failed()))

	if c.QueryParam("format") == "json" {
		return c.JSON(http.StatusOK, res)
	}
	if len(res.Invoices) == 0 {
		return c.JSON(http.StatusUnprocessableEntity, map[string]any{
			"error": "no invoices found",
			"files": res.Files,
		})
	}

	var buf bytes.Buffer
	if err := invoice.WriteCSV(&buf, res.Invoices); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to write CSV: " + err.Error(),
		})
	}
	attachment(c, invoice.DefaultFileName)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// StoreDocument handles POST /api/v1/rips/documents.
func (h *Handler) StoreDocument(c echo.Context) error {
	data, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "failed to read request body"})
	}
	doc, err := consolidate.Decode("request body", data)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	id, err := h.store.SaveDocument(c.Request().Context(), doc)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to store document: " + err.Error(),
		})
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"id":         id.String(),
		"numFactura": doc.NumFactura,
		"usuarios":   len(doc.Usuarios),
		"servicios":  doc.ServiceCount(),
	})
}

// LoadInvoices handles POST /api/v1/invoices/load with one or more "files".
func (h *Handler) LoadInvoices(c echo.Context) error {
	sources, err := uploadedFiles(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	res := h.invoices.ParseBatch(sources)
	if len(res.Invoices) == 0 {
		return c.JSON(http.StatusUnprocessableEntity, map[string]any{
			"error": "no invoices found",
			"files": res.Files,
		})
	}
	batchID, n, err := h.store.SaveInvoices(c.Request().Context(), res.Invoices)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to store invoices: " + err.Error(),
		})
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"batchId": batchID.String(),
		"lines":   n,
		"files":   res.Files,
	})
}

func upload(fh *multipart.FileHeader) batch.Source {
	return batch.Opener[multipart.File]{FileName: fh.Filename, OpenFunc: fh.Open}
}

// uploadedFiles returns the "files" parts of a multipart request in the
// order they were sent.
func uploadedFiles(c echo.Context) ([]batch.Source, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, errors.New("expected a multipart form: " + err.Error())
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		return nil, errors.New("no files uploaded")
	}
	sources := make([]batch.Source, 0, len(headers))
	for _, fh := range headers {
		sources = append(sources, upload(fh))
	}
	return sources, nil
}

func attachment(c echo.Context, name string) {
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`"`)
}
