package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daviidwuu/invoiceAI/constants"
	"github.com/daviidwuu/invoiceAI/internal/entity"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(context.Background(), Config{Path: ":memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { Close(db, nil) })
	return db
}

func sampleRun() (*entity.ExtractionResult, *entity.ParseResult, entity.InvoiceRecord) {
	extraction := &entity.ExtractionResult{
		SourcePath: "invoices/in.pdf",
		Pages:      []entity.Page{{Index: 0, Text: "Total: $10.00", Confidence: 0.8}},
		FieldCandidates: []entity.FieldCandidate{
			{FieldName: constants.FieldTotal, Value: "$10.00", Confidence: 0.72, Source: constants.SourceRegex},
		},
		OCRUsed: true,
	}
	parsed := &entity.ParseResult{
		Total: &entity.ParsedField{Name: "total_amount", Value: "$10.00", Confidence: 0.72, Source: constants.SourceRegex},
	}
	record := entity.InvoiceRecord{
		InvoiceDate:   "03/14/2024",
		InvoiceNumber: "INV-2024-001",
		Description:   "Widgets",
		Amount:        "$10.00",
		VendorCode:    "ACME",
	}
	return extraction, parsed, record
}

func TestSaveRunAndListRecords(t *testing.T) {
	db := openTestDB(t)
	repo := NewRunRepository(db, nil)
	ctx := context.Background()

	extraction, parsed, record := sampleRun()
	runID, err := repo.SaveRun(ctx, extraction, parsed, record)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, runID)

	records, err := repo.ListRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, record, records[0])

	var (
		status  string
		ocrUsed bool
		pages   int
		cands   int
	)
	err = db.QueryRowContext(ctx,
		`SELECT status, ocr_used, page_count, candidate_count FROM document_run WHERE id = ?`,
		runID.String()).Scan(&status, &ocrUsed, &pages, &cands)
	require.NoError(t, err)
	assert.Equal(t, string(constants.RunStatusParseOK), status)
	assert.True(t, ocrUsed)
	assert.Equal(t, 1, pages)
	assert.Equal(t, 1, cands)
}

func TestSaveRun_WithoutParseResult(t *testing.T) {
	db := openTestDB(t)
	repo := NewRunRepository(db, nil)
	ctx := context.Background()

	extraction, _, record := sampleRun()
	runID, err := repo.SaveRun(ctx, extraction, nil, record)
	require.NoError(t, err)

	var status string
	err = db.QueryRowContext(ctx,
		`SELECT status FROM document_run WHERE id = ?`, runID.String()).Scan(&status)
	require.NoError(t, err)
	assert.Equal(t, string(constants.RunStatusExtractOK), status)
}

func TestListRecords_InsertionOrder(t *testing.T) {
	db := openTestDB(t)
	repo := NewRunRepository(db, nil)
	ctx := context.Background()

	extraction, parsed, first := sampleRun()
	_, err := repo.SaveRun(ctx, extraction, parsed, first)
	require.NoError(t, err)

	second := first
	second.InvoiceNumber = "INV-2024-002"
	_, err = repo.SaveRun(ctx, extraction, parsed, second)
	require.NoError(t, err)

	records, err := repo.ListRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "INV-2024-001", records[0].InvoiceNumber)
	assert.Equal(t, "INV-2024-002", records[1].InvoiceNumber)
}

func TestMarkFailed(t *testing.T) {
	db := openTestDB(t)
	repo := NewRunRepository(db, nil)
	ctx := context.Background()

	runID, err := repo.MarkFailed(ctx, "missing.pdf", errors.New("document path does not exist"))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, runID)

	var status, msg string
	err = db.QueryRowContext(ctx,
		`SELECT status, error_message FROM document_run WHERE id = ?`, runID.String()).Scan(&status, &msg)
	require.NoError(t, err)
	assert.Equal(t, string(constants.RunStatusFailed), status)
	assert.Contains(t, msg, "does not exist")

	records, err := repo.ListRecords(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestHealthCheck(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, HealthCheck(context.Background(), db, 0, nil))
}
