package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/daviidwuu/invoiceAI/constants"
	"github.com/daviidwuu/invoiceAI/internal/entity"
)

// Config holds fallback-policy thresholds for the selector.
type Config struct {
	OCRThreshold  float64 // mean direct-tier confidence below which OCR runs; default 0.35
	SnippetWindow int     // characters of context around a candidate match; default 60
}

// Extractor orchestrates the acquisition tiers under the fallback policy
// and generates field candidates from the final page sequence. One document
// is processed start-to-finish per call with no shared mutable state, so a
// single Extractor is safe for concurrent use as long as its tiers are.
type Extractor struct {
	cfg     Config
	direct  Tier
	generic Tier
	ocr     Tier
	logger  *slog.Logger
}

func NewExtractor(cfg Config, direct, generic, ocr Tier, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.OCRThreshold == 0 {
		cfg.OCRThreshold = 0.35
	}
	if cfg.SnippetWindow <= 0 {
		cfg.SnippetWindow = 60
	}
	return &Extractor{cfg: cfg, direct: direct, generic: generic, ocr: ocr, logger: logger}
}

// Process runs the tier fallback policy for one document and returns the
// final page sequence plus every field candidate matchable on it.
//
// Policy, evaluated in order: a forced OCR skips straight to the OCR tier;
// otherwise the direct tier runs and is kept when it produced pages with a
// mean confidence at or above the threshold; a zero-page direct result may
// fall through to the generic tier; OCR runs last whenever flagged or no
// pages exist. OCRUsed is true whenever the OCR tier ran, even if it
// yielded zero pages.
//
// The only propagated error is a missing document; every tier-local fault
// is absorbed by the fallback.
func (e *Extractor) Process(ctx context.Context, path string, forceOCR bool) (*entity.ExtractionResult, error) {
	if _, err := os.Stat(path); err != nil {
		e.logger.Error("document path does not exist", "path", path, "error", err)
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, path)
	}
	format := constants.MapExtToFormat(filepath.Ext(path))
	if format == "" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if format == constants.IMAGE {
		// image inputs carry no text layer, only OCR can read them
		forceOCR = true
	}

	e.logger.Info("starting extraction", "path", path, "format", format, "force_ocr", forceOCR)

	var pages []entity.Page
	ocrUsed := forceOCR

	if !forceOCR {
		pages = e.direct.Extract(ctx, path)
		// An empty direct result scores 0, so it flags OCR under any
		// positive threshold.
		avg := meanConfidence(pages)
		e.logger.Debug("direct tier result", "path", path, "pages", len(pages), "mean_confidence", avg)
		if avg < e.cfg.OCRThreshold {
			e.logger.Warn("mean confidence below threshold; flagging for OCR",
				"path", path, "mean_confidence", avg, "threshold", e.cfg.OCRThreshold)
			ocrUsed = true
		}
	}

	if len(pages) == 0 && !ocrUsed {
		e.logger.Info("falling back to generic text extraction", "path", path)
		pages = e.generic.Extract(ctx, path)
	}

	if forceOCR || ocrUsed || len(pages) == 0 {
		e.logger.Info("performing OCR", "path", path)
		pages = e.ocr.Extract(ctx, path)
		ocrUsed = true
	}

	candidates := GenerateCandidates(pages, e.cfg.SnippetWindow, e.logger)
	result := &entity.ExtractionResult{
		SourcePath:      path,
		Pages:           pages,
		FieldCandidates: candidates,
		OCRUsed:         ocrUsed,
	}
	e.logger.Info("finished extraction",
		"path", path, "pages", len(pages), "candidates", len(candidates), "ocr_used", ocrUsed)
	return result, nil
}

// meanConfidence treats an empty page sequence as confidence 0.
func meanConfidence(pages []entity.Page) float64 {
	if len(pages) == 0 {
		return 0
	}
	var sum float64
	for _, p := range pages {
		sum += p.Confidence
	}
	return sum / float64(len(pages))
}
