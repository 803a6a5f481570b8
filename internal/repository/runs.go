package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/daviidwuu/invoiceAI/constants"
	"github.com/daviidwuu/invoiceAI/internal/entity"
)

// RunRepository persists processed document runs and their derived records.
type RunRepository interface {
	SaveRun(ctx context.Context, extraction *entity.ExtractionResult, parsed *entity.ParseResult, record entity.InvoiceRecord) (uuid.UUID, error)
	MarkFailed(ctx context.Context, sourcePath string, cause error) (uuid.UUID, error)
	ListRecords(ctx context.Context) ([]entity.InvoiceRecord, error)
}

type runRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewRunRepository(db *sql.DB, logger *slog.Logger) RunRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &runRepository{db: db, logger: logger}
}

// SaveRun stores a completed run and its tabular record in one transaction.
func (r *runRepository) SaveRun(ctx context.Context, extraction *entity.ExtractionResult, parsed *entity.ParseResult, record entity.InvoiceRecord) (uuid.UUID, error) {
	runID := uuid.New()
	now := time.Now().UTC()

	parseJSON, err := json.Marshal(parsed)
	if err != nil {
		return uuid.Nil, fmt.Errorf("encode parse result: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO document_run (id, source_path, status, ocr_used, page_count, candidate_count, parse_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID.String(),
		extraction.SourcePath,
		string(constants.RunStatusRunning),
		extraction.OCRUsed,
		len(extraction.Pages),
		len(extraction.FieldCandidates),
		string(parseJSON),
		now,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert run: %w", err)
	}

	// Both stages already completed by the time a run reaches the store;
	// the intermediate status only exists inside this transaction.
	status := constants.RunStatusExtractOK
	if parsed != nil {
		status = constants.RunStatusParseOK
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE document_run SET status = ? WHERE id = ?`, string(status), runID.String()); err != nil {
		return uuid.Nil, fmt.Errorf("update run status: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO invoice_record (id, run_id, invoice_date, invoice_number, address, description, amount, vendor_code, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(),
		runID.String(),
		record.InvoiceDate,
		record.InvoiceNumber,
		record.Address,
		record.Description,
		record.Amount,
		record.VendorCode,
		now,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("commit: %w", err)
	}
	r.logger.Debug("saved run", "run_id", runID, "source_path", extraction.SourcePath)
	return runID, nil
}

// MarkFailed records a terminal failure for a document that never produced
// an extraction result.
func (r *runRepository) MarkFailed(ctx context.Context, sourcePath string, cause error) (uuid.UUID, error) {
	runID := uuid.New()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO document_run (id, source_path, status, error_message, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		runID.String(),
		sourcePath,
		string(constants.RunStatusFailed),
		cause.Error(),
		time.Now().UTC(),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert failed run: %w", err)
	}
	return runID, nil
}

// ListRecords returns all stored records in insertion order.
func (r *runRepository) ListRecords(ctx context.Context) ([]entity.InvoiceRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT invoice_date, invoice_number, address, description, amount, vendor_code
		 FROM invoice_record ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []entity.InvoiceRecord
	for rows.Next() {
		var rec entity.InvoiceRecord
		if err := rows.Scan(&rec.InvoiceDate, &rec.InvoiceNumber, &rec.Address, &rec.Description, &rec.Amount, &rec.VendorCode); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
