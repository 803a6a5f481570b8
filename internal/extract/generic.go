package extract

import (
	"context"
	"log/slog"

	"github.com/gen2brain/go-fitz"

	"github.com/daviidwuu/invoiceAI/constants"
	"github.com/daviidwuu/invoiceAI/internal/entity"
)

// genericConfidence is the fixed confidence for generic-tier pages. The
// reader yields no positional grounding, so its output is trusted less
// than a well-scored direct read.
const genericConfidence = 0.5

// GenericTier extracts plain page text with no bounding boxes. Second
// attempt when the direct tier yields nothing but OCR is not yet warranted.
type GenericTier struct {
	logger *slog.Logger
}

func NewGenericTier(logger *slog.Logger) *GenericTier {
	if logger == nil {
		logger = slog.Default()
	}
	return &GenericTier{logger: logger}
}

func (t *GenericTier) Name() string { return constants.TierGeneric }

func (t *GenericTier) Extract(ctx context.Context, path string) []entity.Page {
	doc, err := fitz.New(path)
	if err != nil {
		t.logger.Warn("generic tier cannot open document", "path", path, "error", err)
		return nil
	}
	defer func() { _ = doc.Close() }()

	var pages []entity.Page
	for n := 0; n < doc.NumPage(); n++ {
		if ctx.Err() != nil {
			t.logger.Warn("generic tier cancelled", "path", path, "page", n)
			return nil
		}
		text, err := doc.Text(n)
		if err != nil {
			// a malformed page degrades to empty text, never aborts the document
			t.logger.Warn("generic tier page unreadable", "path", path, "page", n, "error", err)
			text = ""
		}
		pages = append(pages, entity.Page{
			Index:      n,
			Text:       text,
			Confidence: genericConfidence,
		})
	}
	t.logger.Debug("generic tier extracted", "path", path, "pages", len(pages))
	return pages
}
