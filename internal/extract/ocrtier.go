package extract

import (
	"context"
	"log/slog"
	"os"

	"github.com/daviidwuu/invoiceAI/constants"
	"github.com/daviidwuu/invoiceAI/internal/entity"
)

// OCRTier rasterizes each page and runs text recognition on the images.
// The fallback of last resort due to cost; requires both a rasterization
// and a recognition capability. Absence of either is a configuration fact
// that degrades the tier to a no-op.
type OCRTier struct {
	rasterizer Rasterizer
	recognizer Recognizer
	logger     *slog.Logger
}

func NewOCRTier(rasterizer Rasterizer, recognizer Recognizer, logger *slog.Logger) *OCRTier {
	if logger == nil {
		logger = slog.Default()
	}
	return &OCRTier{rasterizer: rasterizer, recognizer: recognizer, logger: logger}
}

func (t *OCRTier) Name() string { return constants.TierOCR }

// Available reports whether both backend capabilities are configured.
func (t *OCRTier) Available() bool {
	return t.rasterizer != nil && t.recognizer != nil
}

func (t *OCRTier) Extract(ctx context.Context, path string) []entity.Page {
	if !t.Available() {
		t.logger.Error("ocr backend missing",
			"rasterizer_available", t.rasterizer != nil,
			"recognizer_available", t.recognizer != nil,
		)
		return nil
	}

	dir, err := os.MkdirTemp("", "invoiceai-ocr-*")
	if err != nil {
		t.logger.Error("ocr tier temp dir", "error", err)
		return nil
	}
	defer func() {
		if rerr := os.RemoveAll(dir); rerr != nil {
			t.logger.Warn("failed to remove temp dir", "dir", dir, "error", rerr)
		}
	}()

	images, err := t.rasterizer.Rasterize(ctx, path, dir)
	if err != nil {
		t.logger.Error("rasterization failed", "path", path, "error", err)
		return nil
	}

	var pages []entity.Page
	for i, img := range images {
		rec, err := t.recognizer.Recognize(ctx, img)
		if err != nil {
			t.logger.Error("recognition failed", "path", path, "page", i, "error", err)
			return nil
		}
		pages = append(pages, entity.Page{
			Index:      i,
			Text:       rec.Text,
			Tokens:     rec.Tokens,
			Confidence: PageConfidence(rec.Tokens),
		})
	}
	t.logger.Debug("ocr tier extracted", "path", path, "pages", len(pages))
	return pages
}
