package ocr

import (
	"context"
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gen2brain/go-fitz"
)

// FitzRasterizer renders document pages to PNG files using MuPDF.
type FitzRasterizer struct {
	DPI    int // default 300
	logger *slog.Logger
}

func NewFitzRasterizer(dpi int, logger *slog.Logger) *FitzRasterizer {
	if dpi <= 0 {
		dpi = 300
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FitzRasterizer{DPI: dpi, logger: logger}
}

// Rasterize renders every page of the document at path into dir and returns
// the generated image paths in page order.
func (r *FitzRasterizer) Rasterize(ctx context.Context, path, dir string) ([]string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer func() {
		if cerr := doc.Close(); cerr != nil {
			r.logger.Warn("closing document", "path", path, "error", cerr)
		}
	}()

	var out []string
	for n := 0; n < doc.NumPage(); n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := doc.ImageDPI(n, float64(r.DPI))
		if err != nil {
			return nil, fmt.Errorf("render page %d: %w", n, err)
		}
		imgPath := filepath.Join(dir, fmt.Sprintf("page-%04d.png", n))
		f, err := os.Create(imgPath)
		if err != nil {
			return nil, err
		}
		if err := png.Encode(f, img); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("encode page %d: %w", n, err)
		}
		if err := f.Close(); err != nil {
			return nil, err
		}
		out = append(out, imgPath)
	}
	r.logger.Debug("rasterized document", "path", path, "pages", len(out), "dpi", r.DPI)
	return out, nil
}
