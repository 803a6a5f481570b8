package parse

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strings"

	"github.com/daviidwuu/invoiceAI/constants"
	"github.com/daviidwuu/invoiceAI/internal/entity"
	"github.com/daviidwuu/invoiceAI/internal/ner"
)

var (
	reInvoiceID   = regexp.MustCompile(`(?i)invoice\s*(?:number|no\.?|#)\s*[:#-]?\s*([\w-]+)`)
	reInvoiceDate = regexp.MustCompile(`(?i)(?:invoice\s*)?date\s*[:#-]?\s*([0-9]{1,2}[-/][0-9]{1,2}[-/][0-9]{2,4})`)
	reTotal       = regexp.MustCompile(`(?i)total\s*(?:due|amount)?\s*[:#-]?\s*([$€£]?\s?[0-9,.]+)`)
	reLineItem    = regexp.MustCompile(`^(.+?)\s+(\d+)\s+([$€£]?\s?[0-9,.]+)$`)
)

// orgLabels are recognizer labels treated as organization-like; they add a
// vendor reasoning note without overriding the known-entity pick.
var orgLabels = map[string]struct{}{
	"vendor":       {},
	"org":          {},
	"organization": {},
	"company":      {},
}

// Parser fuses a known-entity lookup, per-field regex extraction, an
// optional entity-recognition pass, and line-item detection into one
// ParseResult with an ordered reasoning trail. A nil recognizer skips the
// recognition pass; that absence is decided at construction, not per call.
type Parser struct {
	known      *KnownEntities
	recognizer ner.Recognizer
	logger     *slog.Logger
}

func NewParser(known *KnownEntities, recognizer ner.Recognizer, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	if known == nil {
		known = &KnownEntities{Vendors: map[string]entity.Vendor{}}
	}
	return &Parser{known: known, recognizer: recognizer, logger: logger}
}

// Parse resolves the top-level fields from an extraction result. Absence of
// a match for any field is not an error; a fully empty ParseResult is a
// valid low-information outcome.
func (p *Parser) Parse(ctx context.Context, extraction *entity.ExtractionResult) *entity.ParseResult {
	texts := make([]string, len(extraction.Pages))
	for i, page := range extraction.Pages {
		texts[i] = page.Text
	}
	text := strings.Join(texts, "\n")

	result := &entity.ParseResult{}

	result.Vendor = p.matchKnownEntity(text, result)
	result.InvoiceID = p.regexExtract(text, reInvoiceID, "Invoice number", result)
	result.InvoiceDate = p.regexExtract(text, reInvoiceDate, "Invoice date", result)
	result.Total = p.regexExtract(text, reTotal, "Total amount", result)

	if p.recognizer != nil {
		result.AdditionalEntities = p.recognizeEntities(ctx, text, result)
	}

	result.LineItems = p.extractLineItems(text, result)

	vendor := ""
	if result.Vendor != nil {
		vendor = result.Vendor.Value
	}
	p.logger.Info("completed parsing",
		"vendor", vendor,
		"line_items", len(result.LineItems),
		"reasoning_steps", len(result.ReasoningSteps),
	)
	return result
}

// matchKnownEntity returns the first registered vendor whose name appears as
// a case-insensitive substring of the text. Vendor IDs are walked in sorted
// order so only one winner is ever returned for a given table.
func (p *Parser) matchKnownEntity(text string, result *entity.ParseResult) *entity.ParsedField {
	lower := strings.ToLower(text)
	for _, id := range p.known.IDs {
		vendor := p.known.Vendors[id]
		if vendor.Name == "" || !strings.Contains(lower, strings.ToLower(vendor.Name)) {
			continue
		}
		result.ReasoningSteps = append(result.ReasoningSteps, entity.ReasoningStep{
			Field:  constants.FieldVendor,
			Method: constants.MethodKnownEntity,
			Detail: fmt.Sprintf("Matched vendor %q by ID %s", vendor.Name, id),
		})
		return &entity.ParsedField{
			Name:       constants.FieldVendor,
			Value:      vendor.Name,
			Confidence: vendor.Confidence,
			Source:     constants.SourceKnownEntity,
			Reasoning:  fmt.Sprintf("Matched known vendor %s", vendor.Name),
		}
	}
	return nil
}

// regexExtract searches the full text with a fixed pattern, first match
// only. Longer captured values are weakly favored as less likely to be
// truncation artifacts.
func (p *Parser) regexExtract(text string, re *regexp.Regexp, label string, result *entity.ParseResult) *entity.ParsedField {
	name := strings.ToLower(strings.ReplaceAll(label, " ", "_"))
	m := re.FindStringSubmatch(text)
	if m == nil {
		p.logger.Debug("regex did not match", "pattern", re.String())
		return nil
	}
	value := strings.TrimSpace(m[1])
	confidence := math.Min(0.95, 0.6+float64(len([]rune(value)))/30)
	p.logger.Debug("regex match", "label", label, "value", value, "confidence", confidence)
	result.ReasoningSteps = append(result.ReasoningSteps, entity.ReasoningStep{
		Field:  name,
		Method: constants.MethodRegex,
		Detail: fmt.Sprintf("%s %q matched by pattern", label, value),
	})
	return &entity.ParsedField{
		Name:       name,
		Value:      value,
		Confidence: math.Round(confidence*100) / 100,
		Source:     constants.SourceRegex,
		Reasoning:  fmt.Sprintf("Detected %s via regex", strings.ToLower(label)),
	}
}

// recognizeEntities runs the optional recognition backend over the full
// text. A recognizer failure is logged and skipped, never propagated.
func (p *Parser) recognizeEntities(ctx context.Context, text string, result *entity.ParseResult) []entity.ParsedField {
	found, err := p.recognizer.Recognize(ctx, text)
	if err != nil {
		p.logger.Warn("entity recognition failed", "error", err)
		return nil
	}
	var fields []entity.ParsedField
	for _, ent := range found {
		label := strings.ToLower(ent.Label)
		if _, ok := orgLabels[label]; ok {
			result.ReasoningSteps = append(result.ReasoningSteps, entity.ReasoningStep{
				Field:  constants.FieldVendor,
				Method: constants.MethodModelNER,
				Detail: fmt.Sprintf("Detected organization entity %q", ent.Text),
			})
		}
		confidence := ent.Score
		if confidence == 0 {
			confidence = 0.5
		}
		fields = append(fields, entity.ParsedField{
			Name:       label,
			Value:      ent.Text,
			Confidence: confidence,
			Source:     constants.SourceModel,
			Reasoning:  fmt.Sprintf("Detected entity %s (%s)", ent.Text, ent.Label),
		})
	}
	return fields
}

// extractLineItems scans line-by-line for <description> <integer quantity>
// <price> rows.
func (p *Parser) extractLineItems(text string, result *entity.ParseResult) []entity.LineItem {
	var items []entity.LineItem
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		m := reLineItem.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		items = append(items, entity.LineItem{
			Description: m[1],
			Quantity:    m[2],
			Price:       m[3],
		})
	}
	if len(items) > 0 {
		result.ReasoningSteps = append(result.ReasoningSteps, entity.ReasoningStep{
			Field:  constants.FieldLineItems,
			Method: constants.MethodRegexTable,
			Detail: fmt.Sprintf("Detected %d potential line items", len(items)),
		})
	}
	return items
}
