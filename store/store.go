// Package store persists RIPS documents and invoice lines in PostgreSQL.
package store

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"ripstool/consolidate"
	"ripstool/export"
	"ripstool/invoice"
	"ripstool/rips"
)

// Schema creates every table the store writes to. It is idempotent.
//
//go:embed schema.sql
var Schema string

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

var (
	usuarioCopyCols = []string{
		"document_id", "ordinal", "consecutivo", "tipo_documento_identificacion",
		"num_documento_identificacion", "tipo_usuario", "fecha_nacimiento",
		"cod_sexo", "cod_municipio_residencia",
	}
	serviceCopyCols = []string{
		"document_id", "num_doc_id_paciente", "kind", "consecutivo",
		"cod_prestador", "fecha", "codigo", "descripcion",
		"cod_diagnostico_principal", "num_autorizacion", "cantidad",
		"vr_servicio", "valor_pago_moderador",
	}
	invoiceCopyCols = []string{
		"batch_id", "nit", "numero_de_factura", "cufe", "fecha_de_factura",
		"codigo_prestador", "codigo_del_servicio_facturado",
		"descripcion_del_servicio", "cantidad", "valor_unitario",
		"valor_total_servicio", "tipo_documento_identificacion",
		"numero_documento_identificacion", "autorizacion",
	}
)

// NewPool connects to PostgreSQL and verifies the connection.
func NewPool(ctx context.Context, connStr string, maxConns, minConns int32) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse connection: %w", err)
	}
	if maxConns > 0 {
		poolConfig.MaxConns = maxConns
	}
	if minConns > 0 {
		poolConfig.MinConns = minConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

type Store struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

func New(pool *pgxpool.Pool, logger zerolog.Logger) *Store {
	return &Store{pool: pool, log: logger}
}

// Migrate applies Schema.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// SaveDocument stores doc, its usuarios and one row per service line in a
// single transaction and returns the new document id.
func (s *Store) SaveDocument(ctx context.Context, doc rips.Document) (uuid.UUID, error) {
	start := time.Now()
	id := uuid.New()

	payload, err := json.Marshal(doc)
	if err != nil {
		return uuid.Nil, fmt.Errorf("encode document: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO rips_documents (id, num_documento_id_obligado, num_factura, tipo_nota, num_nota, total_factura, payload)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, sanitizeUTF8(doc.NumDocumentoIdObligado), sanitizeUTF8(doc.NumFactura),
		optionalToPgText(doc.TipoNota), optionalToPgText(doc.NumNota),
		decimalToNumeric(consolidate.TotalFactura(doc)), payload,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert document: %w", err)
	}

	usuarios := make([][]any, 0, len(doc.Usuarios))
	for i, u := range doc.Usuarios {
		usuarios = append(usuarios, []any{
			id, int32(i + 1), int32(u.Consecutivo), string(u.TipoDocumentoIdentificacion),
			sanitizeUTF8(u.NumDocumentoIdentificacion), u.TipoUsuario,
			u.FechaNacimiento, u.CodSexo, u.CodMunicipioResidencia,
		})
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"rips_usuarios"}, usuarioCopyCols, pgx.CopyFromRows(usuarios)); err != nil {
		return uuid.Nil, fmt.Errorf("copy rips_usuarios: %w", err)
	}

	rows := export.ServiceRows(doc)
	services := make([][]any, 0, len(rows))
	for i := range rows {
		r := &rows[i]
		services = append(services, []any{
			id, sanitizeUTF8(r.NumDocIdPaciente), r.Kind, r.Consecutivo,
			r.CodPrestador, r.Fecha, optToPgText(r.Codigo), optToPgText(r.Descripcion),
			optToPgText(r.CodDiagnosticoPrincipal), optToPgText(r.NumAutorizacion),
			floatToNumeric(r.Cantidad), floatToNumeric(r.VrServicio),
			floatToNumeric(r.ValorPagoModerador),
		})
	}
	copied, err := tx.CopyFrom(ctx, pgx.Identifier{"rips_services"}, serviceCopyCols, pgx.CopyFromRows(services))
	if err != nil {
		return uuid.Nil, fmt.Errorf("copy rips_services: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("commit: %w", err)
	}

	s.log.Info().
		Str("document_id", id.String()).
		Str("num_factura", doc.NumFactura).
		Int("usuarios", len(usuarios)).
		Int64("services", copied).
		Dur("elapsed", time.Since(start)).
		Msg("document stored")
	return id, nil
}

// Document returns the stored document with the given id.
func (s *Store) Document(ctx context.Context, id uuid.UUID) (rips.Document, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, `SELECT payload FROM rips_documents WHERE id = $1`, id).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return rips.Document{}, fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return rips.Document{}, fmt.Errorf("select document: %w", err)
	}
	var doc rips.Document
	if err := json.Unmarshal(payload, &doc); err != nil {
		return rips.Document{}, fmt.Errorf("decode document %s: %w", id, err)
	}
	return doc, nil
}

// InvoiceTotal returns the stored totalFactura of a document.
func (s *Store) InvoiceTotal(ctx context.Context, id uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.pool.QueryRow(ctx, `SELECT total_factura::text FROM rips_documents WHERE id = $1`, id).Scan(&total)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("select total: %w", err)
	}
	return total, nil
}

// SaveInvoices bulk-loads extracted invoice lines under a new batch id.
func (s *Store) SaveInvoices(ctx context.Context, records []invoice.InvoiceData) (uuid.UUID, int64, error) {
	batchID := uuid.New()

	rows := make([][]any, 0, len(records))
	for i := range records {
		r := &records[i]
		rows = append(rows, []any{
			batchID, sanitizeUTF8(r.NIT), sanitizeUTF8(r.NumeroDeFactura), r.CUFE, r.FechaDeFactura,
			textToPgText(r.CodigoPrestador), textToPgText(r.CodigoDelServicioFacturado),
			textToPgText(r.DescripcionDelServicio), textToPgText(r.Cantidad),
			textToPgText(r.ValorUnitario), textToPgText(r.ValorTotalServicio),
			textToPgText(r.TipoDocumentoIdentificacion), textToPgText(r.NumeroDocumentoIdentificacion),
			textToPgText(r.Autorizacion),
		})
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	copied, err := tx.CopyFrom(ctx, pgx.Identifier{"invoice_lines"}, invoiceCopyCols, pgx.CopyFromRows(rows))
	if err != nil {
		return uuid.Nil, 0, fmt.Errorf("copy invoice_lines: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, 0, fmt.Errorf("commit: %w", err)
	}

	s.log.Info().Str("batch_id", batchID.String()).Int64("lines", copied).Msg("invoice lines stored")
	return batchID, copied, nil
}

// sanitizeUTF8 replaces invalid UTF-8 bytes with spaces.
func sanitizeUTF8(s string) string {
	return strings.ToValidUTF8(s, " ")
}

// pgtype helpers

func floatToNumeric(f *float64) pgtype.Numeric {
	if f == nil {
		return pgtype.Numeric{Valid: false}
	}
	bf := big.NewFloat(*f)
	text := bf.Text('f', -1)
	var num pgtype.Numeric
	num.Scan(text)
	return num
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var num pgtype.Numeric
	num.Scan(d.String())
	return num
}

func optToPgText(s *string) pgtype.Text {
	if s == nil || *s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: sanitizeUTF8(*s), Valid: true}
}

func optionalToPgText(o rips.Optional) pgtype.Text {
	if !o.Valid {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: sanitizeUTF8(o.Value), Valid: true}
}

func textToPgText(s string) pgtype.Text {
	return optToPgText(&s)
}
