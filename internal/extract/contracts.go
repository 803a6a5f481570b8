package extract

import (
	"context"
	"errors"

	"github.com/daviidwuu/invoiceAI/internal/entity"
	"github.com/daviidwuu/invoiceAI/internal/ocr"
)

// The selector propagates only input faults to callers; every tier-local
// fault degrades to an empty page sequence instead.
var (
	ErrDocumentNotFound  = errors.New("document not found")
	ErrUnsupportedFormat = errors.New("unsupported document format")
)

// Tier is one document-to-text acquisition strategy. Implementations fail
// softly: any internal fault is logged and surfaces as an empty page
// sequence, never as a panic or error past the tier boundary. Page index
// order is always preserved.
type Tier interface {
	Name() string
	Extract(ctx context.Context, path string) []entity.Page
}

// Rasterizer renders document pages to image files in dir, in page order.
type Rasterizer interface {
	Rasterize(ctx context.Context, path, dir string) ([]string, error)
}

// Recognizer OCRs a single page image into text plus word boxes.
type Recognizer interface {
	Recognize(ctx context.Context, imagePath string) (ocr.RecognizedPage, error)
}
