package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/daviidwuu/invoiceAI/internal/export"
	"github.com/daviidwuu/invoiceAI/internal/extract"
	"github.com/daviidwuu/invoiceAI/internal/ner"
	"github.com/daviidwuu/invoiceAI/internal/ocr"
	"github.com/daviidwuu/invoiceAI/internal/parse"
	"github.com/daviidwuu/invoiceAI/internal/pipeline"
	"github.com/daviidwuu/invoiceAI/internal/repository"
)

func main() {
	fs := ff.NewFlagSet("invoiceai")
	var (
		knownEntities = fs.StringLong("known-entities", "config/known_entities.json", "Known vendor table (JSON)")
		dbPath        = fs.StringLong("db", "invoiceai.db", "Run history database file path")
		forceOCR      = fs.BoolLong("force-ocr", "Skip the text tiers and OCR every page")
		ocrThreshold  = fs.Float64Long("ocr-threshold", 0.35, "Mean direct-tier confidence below which OCR runs")
		dpi           = fs.IntLong("dpi", 300, "Rasterization DPI for OCR")
		tessLang      = fs.StringLong("tesseract-lang", "eng", "Tesseract language")
		tessBin       = fs.StringLong("tesseract", "tesseract", "Tesseract binary name or path")
		vendorCode    = fs.StringLong("vendor-code", "", "Override the vendor code for all documents")
		xlsxPath      = fs.StringLong("xlsx", "", "Write all stored records to this XLSX file after processing")
		geminiKey     = fs.StringLong("gemini-key", "", "Google Gemini API key for the optional entity-recognition pass")
		geminiModel   = fs.StringLong("gemini-model", "gemini-2.5-flash", "Google Gemini model name")
		printJSON     = fs.BoolLong("json", "Print extraction and parse results as JSON")
		verbose       = fs.BoolLong("verbose", "Enable debug logging")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("INVOICEAI"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	// Structured logger that outputs messages with variables but no time/level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey || a.Key == slog.LevelKey {
				return slog.Attr{}
			}
			return a
		},
	}))
	slog.SetDefault(logger)

	docs := fs.GetArgs()
	if len(docs) == 0 {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintln(os.Stderr, "error: at least one document path is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	known, err := parse.LoadKnownEntities(*knownEntities, logger)
	if err != nil {
		logger.Error("failed to load known entities", "path", *knownEntities, "error", err)
		os.Exit(1)
	}

	var recognizer ner.Recognizer
	if key := apiKey(*geminiKey); key != "" {
		g, err := ner.NewGemini(ctx, key, *geminiModel)
		if err != nil {
			logger.Error("failed to init gemini recognizer", "error", err)
			os.Exit(1)
		}
		defer func() { _ = g.Close() }()
		recognizer = g
	}

	rasterizer := ocr.NewFitzRasterizer(*dpi, logger)
	recognizerOCR := ocr.NewTesseractRecognizer(ocr.Config{
		Tesseract:   *tessBin,
		Lang:        *tessLang,
		TessdataDir: os.Getenv("TESSDATA_PREFIX"),
	}, logger)

	extractor := extract.NewExtractor(
		extract.Config{OCRThreshold: *ocrThreshold},
		extract.NewDirectTier(logger),
		extract.NewGenericTier(logger),
		extract.NewOCRTier(rasterizer, recognizerOCR, logger),
		logger,
	)
	parser := parse.NewParser(known, recognizer, logger)
	processor := pipeline.NewProcessor(logger, extractor, parser, known)

	db, err := repository.Open(ctx, repository.Config{Path: *dbPath}, logger)
	if err != nil {
		logger.Error("failed to open database", "path", *dbPath, "error", err)
		os.Exit(1)
	}
	defer repository.Close(db, logger)
	runs := repository.NewRunRepository(db, logger)

	exitCode := 0
	for _, doc := range docs {
		record, extraction, parsed, err := processor.Process(ctx, doc, *forceOCR, *vendorCode)
		if err != nil {
			logger.Error("processing failed", "path", doc, "error", err)
			if _, derr := runs.MarkFailed(ctx, doc, err); derr != nil {
				logger.Error("failed to record failure", "path", doc, "error", derr)
			}
			exitCode = 1
			continue
		}
		if _, err := runs.SaveRun(ctx, extraction, parsed, record); err != nil {
			logger.Error("failed to save run", "path", doc, "error", err)
			exitCode = 1
		}
		if *printJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			_ = enc.Encode(extraction)
			_ = enc.Encode(parsed)
		} else {
			fmt.Println(record.TSV())
		}
	}

	if *xlsxPath != "" {
		records, err := runs.ListRecords(ctx)
		if err != nil {
			logger.Error("failed to list records", "error", err)
			os.Exit(1)
		}
		data, err := export.NewService(logger).WriteXLSX(records)
		if err != nil {
			logger.Error("failed to build xlsx", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*xlsxPath, data, 0o644); err != nil {
			logger.Error("failed to write xlsx", "path", *xlsxPath, "error", err)
			os.Exit(1)
		}
		logger.Info("wrote export", "path", *xlsxPath, "rows", len(records))
	}

	os.Exit(exitCode)
}

func apiKey(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv("GEMINI_API_KEY")
}
