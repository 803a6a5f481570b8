package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daviidwuu/invoiceAI/internal/entity"
	"github.com/daviidwuu/invoiceAI/internal/parse"
)

type stubExtractor struct {
	result *entity.ExtractionResult
	err    error
}

func (s *stubExtractor) Process(ctx context.Context, path string, forceOCR bool) (*entity.ExtractionResult, error) {
	return s.result, s.err
}

type stubParser struct {
	result *entity.ParseResult
}

func (s *stubParser) Parse(ctx context.Context, extraction *entity.ExtractionResult) *entity.ParseResult {
	return s.result
}

func sampleParse() *entity.ParseResult {
	return &entity.ParseResult{
		Vendor:      &entity.ParsedField{Name: "vendor", Value: "Acme Corporation", Confidence: 0.95},
		InvoiceID:   &entity.ParsedField{Name: "invoice_number", Value: " INV-2024-001 "},
		InvoiceDate: &entity.ParsedField{Name: "invoice_date", Value: "03/14/2024"},
		Total:       &entity.ParsedField{Name: "total_amount", Value: "$1,250.00"},
		LineItems: []entity.LineItem{
			{Description: "Widgets", Quantity: "10", Price: "$4.50"},
			{Description: "Gadgets", Quantity: "3", Price: "$12.00"},
		},
	}
}

func knownWithAcme() *parse.KnownEntities {
	return &parse.KnownEntities{
		Vendors: map[string]entity.Vendor{
			"acme": {Name: "Acme Corporation", Code: "ACME"},
		},
		IDs: []string{"acme"},
	}
}

func TestProcess_BuildsRecord(t *testing.T) {
	extraction := &entity.ExtractionResult{SourcePath: "in.pdf", Pages: []entity.Page{{Index: 0}}}
	p := NewProcessor(nil, &stubExtractor{result: extraction}, &stubParser{result: sampleParse()}, knownWithAcme())

	record, gotExtraction, gotParsed, err := p.Process(context.Background(), "in.pdf", false, "")
	require.NoError(t, err)

	assert.Same(t, extraction, gotExtraction)
	assert.NotNil(t, gotParsed)
	assert.Equal(t, "03/14/2024", record.InvoiceDate)
	// parsed values are trimmed before they reach the record
	assert.Equal(t, "INV-2024-001", record.InvoiceNumber)
	assert.Equal(t, "", record.Address)
	assert.Equal(t, "Widgets", record.Description)
	assert.Equal(t, "$1,250.00", record.Amount)
	assert.Equal(t, "ACME", record.VendorCode)
}

func TestProcess_VendorCodeOverrideWins(t *testing.T) {
	p := NewProcessor(nil, &stubExtractor{result: &entity.ExtractionResult{}}, &stubParser{result: sampleParse()}, knownWithAcme())

	record, _, _, err := p.Process(context.Background(), "in.pdf", false, "CUSTOM")
	require.NoError(t, err)
	assert.Equal(t, "CUSTOM", record.VendorCode)
}

func TestProcess_UnknownVendorCodeFallback(t *testing.T) {
	parsed := sampleParse()
	parsed.Vendor = &entity.ParsedField{Name: "vendor", Value: "Unregistered LLC"}
	p := NewProcessor(nil, &stubExtractor{result: &entity.ExtractionResult{}}, &stubParser{result: parsed}, knownWithAcme())

	record, _, _, err := p.Process(context.Background(), "in.pdf", false, "")
	require.NoError(t, err)
	assert.Equal(t, "UNKNOWN", record.VendorCode)
}

func TestProcess_EmptyParseResult(t *testing.T) {
	p := NewProcessor(nil, &stubExtractor{result: &entity.ExtractionResult{}}, &stubParser{result: &entity.ParseResult{}}, nil)

	record, _, _, err := p.Process(context.Background(), "in.pdf", false, "")
	require.NoError(t, err)

	assert.Equal(t, "UNKNOWN", record.VendorCode)
	assert.Equal(t, "", record.InvoiceNumber)
	assert.Equal(t, "", record.Description)
	assert.Equal(t, "\t\t\t\t\tUNKNOWN", record.TSV())
}

func TestProcess_ExtractionErrorPropagates(t *testing.T) {
	cause := errors.New("document not found")
	p := NewProcessor(nil, &stubExtractor{err: cause}, &stubParser{}, nil)

	_, extraction, parsed, err := p.Process(context.Background(), "missing.pdf", false, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Nil(t, extraction)
	assert.Nil(t, parsed)
}
