package pipeline

import (
	"context"
	"log/slog"
	"strings"

	"github.com/daviidwuu/invoiceAI/internal/entity"
	"github.com/daviidwuu/invoiceAI/internal/parse"
)

// DocumentExtractor is stage 1: document path -> pages + candidates.
type DocumentExtractor interface {
	Process(ctx context.Context, path string, forceOCR bool) (*entity.ExtractionResult, error)
}

// FieldParser is stage 2: extraction result -> fused fields.
type FieldParser interface {
	Parse(ctx context.Context, extraction *entity.ExtractionResult) *entity.ParseResult
}

// Processor coordinates extraction then fusion and derives the tabular
// record expected by downstream exporters.
type Processor struct {
	Logger    *slog.Logger
	Extractor DocumentExtractor
	Parser    FieldParser
	Known     *parse.KnownEntities
}

func NewProcessor(logger *slog.Logger, extractor DocumentExtractor, parser FieldParser, known *parse.KnownEntities) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{Logger: logger, Extractor: extractor, Parser: parser, Known: known}
}

// Process runs the full document-to-record pipeline for one document. An
// explicit vendor code override wins over the matched vendor's registered
// code. Each call is independent; no state is shared across documents.
func (p *Processor) Process(ctx context.Context, path string, forceOCR bool, overrideVendorCode string) (entity.InvoiceRecord, *entity.ExtractionResult, *entity.ParseResult, error) {
	p.Logger.Info("processing invoice", "path", path)

	extraction, err := p.Extractor.Process(ctx, path, forceOCR)
	if err != nil {
		p.Logger.Error("processor.extract.failed", "path", path, "error", err)
		return entity.InvoiceRecord{}, nil, nil, err
	}
	p.Logger.Info("processor.extract.ok",
		"path", path,
		"pages", len(extraction.Pages),
		"candidates", len(extraction.FieldCandidates),
		"ocr_used", extraction.OCRUsed,
	)

	parsed := p.Parser.Parse(ctx, extraction)
	record := p.buildRecord(parsed, overrideVendorCode)
	p.Logger.Info("processor.parse.ok", "path", path, "record", record.TSV())
	return record, extraction, parsed, nil
}

func (p *Processor) buildRecord(parsed *entity.ParseResult, overrideVendorCode string) entity.InvoiceRecord {
	value := func(f *entity.ParsedField) string {
		if f == nil {
			return ""
		}
		return strings.TrimSpace(f.Value)
	}

	vendorCode := overrideVendorCode
	if vendorCode == "" && parsed.Vendor != nil && p.Known != nil {
		vendorCode = p.Known.CodeForVendor(parsed.Vendor.Value)
	}
	if vendorCode == "" {
		vendorCode = "UNKNOWN"
	}

	description := ""
	if len(parsed.LineItems) > 0 {
		description = parsed.LineItems[0].Description
	}

	return entity.InvoiceRecord{
		InvoiceDate:   value(parsed.InvoiceDate),
		InvoiceNumber: value(parsed.InvoiceID),
		Address:       "",
		Description:   description,
		Amount:        value(parsed.Total),
		VendorCode:    vendorCode,
	}
}
