package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/daviidwuu/invoiceAI/internal/entity"
)

// Config holds tesseract invocation options.
type Config struct {
	Tesseract string // binary name or absolute path; if empty -> "tesseract"
	Lang      string // default "eng"

	TessdataDir string
	PSM         int // e.g., 6 is good for uniform block of text
	OEM         int // 1 = LSTM; leave 0 to use default
}

// RecognizedPage is the word-level output of one recognition pass.
type RecognizedPage struct {
	Text   string
	Tokens []entity.Token
}

// TesseractRecognizer shells out to tesseract in TSV mode, yielding
// full-page text plus word boxes in a single invocation.
type TesseractRecognizer struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewTesseractRecognizer(cfg Config, logger *slog.Logger) *TesseractRecognizer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	return &TesseractRecognizer{cfg: cfg, runner: execRunner{}, logger: logger}
}

// Recognize OCRs a single page image.
func (t *TesseractRecognizer) Recognize(ctx context.Context, imagePath string) (RecognizedPage, error) {
	args := []string{imagePath, "stdout", "-l", t.cfg.Lang}
	if t.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(t.cfg.PSM))
	}
	if t.cfg.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(t.cfg.OEM))
	}
	if t.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", t.cfg.TessdataDir)
	}
	// TSV output
	args = append(args, "tsv")

	out, errb, err := t.runner.Run(ctx, t.cfg.Tesseract, args...)
	if err != nil {
		return RecognizedPage{}, fmt.Errorf("tesseract TSV: %w: %s", err, truncate(string(errb), 512))
	}
	return parseTSV(string(out)), nil
}

// parseTSV converts tesseract TSV output into page text and word tokens.
// Columns: level page_num block_num par_num line_num word_num left top
// width height conf text. Word rows are level 5.
func parseTSV(tsv string) RecognizedPage {
	var (
		page     RecognizedPage
		text     strings.Builder
		lastLine [3]int // block, par, line of the previous word
		haveWord bool
	)
	for i, ln := range strings.Split(tsv, "\n") {
		if i == 0 || len(ln) == 0 {
			continue // skip header
		}
		cols := strings.Split(ln, "\t")
		if len(cols) < 12 {
			continue // defensive
		}
		if cols[0] != "5" {
			continue
		}
		word := strings.TrimSpace(cols[11])
		if word == "" {
			continue
		}
		block, _ := strconv.Atoi(cols[2])
		par, _ := strconv.Atoi(cols[3])
		line, _ := strconv.Atoi(cols[4])
		left, _ := strconv.ParseFloat(cols[6], 64)
		top, _ := strconv.ParseFloat(cols[7], 64)
		width, _ := strconv.ParseFloat(cols[8], 64)
		height, _ := strconv.ParseFloat(cols[9], 64)

		cur := [3]int{block, par, line}
		if haveWord {
			if cur == lastLine {
				text.WriteByte(' ')
			} else {
				text.WriteByte('\n')
			}
		}
		text.WriteString(word)
		lastLine = cur
		haveWord = true

		page.Tokens = append(page.Tokens, entity.Token{
			Text: word,
			BBox: entity.BBox{X0: left, Y0: top, X1: left + width, Y1: top + height},
		})
	}
	page.Text = text.String()
	return page
}

// MeanWordConfidence returns the mean word confidence of a TSV payload in
// 0..1, or 0 when no confident words are present. Diagnostic only.
func MeanWordConfidence(tsv string) float64 {
	var sum, n float64
	for i, ln := range strings.Split(tsv, "\n") {
		if i == 0 || len(ln) == 0 {
			continue
		}
		cols := strings.Split(ln, "\t")
		if len(cols) < 12 || cols[0] != "5" {
			continue
		}
		confStr := cols[10]
		if confStr == "" || confStr == "-1" {
			continue
		}
		if v, err := strconv.ParseFloat(confStr, 64); err == nil {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / n / 100.0
}
