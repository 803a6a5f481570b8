package extract

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"github.com/daviidwuu/invoiceAI/constants"
	"github.com/daviidwuu/invoiceAI/internal/entity"
)

// fieldPatterns are scanned in this fixed order so that candidate output is
// deterministic for an identical page sequence.
var fieldPatterns = []struct {
	name string
	re   *regexp.Regexp
}{
	{constants.FieldInvoiceID, regexp.MustCompile(`(?i)invoice\s*(?:number|no\.?|#)\s*[:#-]?\s*([\w-]+)`)},
	{constants.FieldInvoiceDate, regexp.MustCompile(`(?i)(?:invoice\s*)?date\s*[:#-]?\s*([0-9]{1,2}[-/][0-9]{1,2}[-/][0-9]{2,4})`)},
	{constants.FieldTotal, regexp.MustCompile(`(?i)total\s*(?:due|amount)?\s*[:#-]?\s*([$€£]?\s?[0-9,.]+)`)},
}

// GenerateCandidates scans the concatenated page text for every
// non-overlapping match of the named field patterns, plus one heuristic
// vendor guess from the first page header. Candidates carry a snippet,
// the owning page index, and a token-union bounding box when the page has
// positioned tokens.
func GenerateCandidates(pages []entity.Page, window int, logger *slog.Logger) []entity.FieldCandidate {
	if logger == nil {
		logger = slog.Default()
	}
	texts := make([]string, len(pages))
	for i, p := range pages {
		texts[i] = p.Text
	}
	stream := strings.Join(texts, "\n")
	if stream == "" {
		logger.Warn("no text available for candidate generation")
		return nil
	}

	var candidates []entity.FieldCandidate
	for _, fp := range fieldPatterns {
		for _, loc := range fp.re.FindAllStringSubmatchIndex(stream, -1) {
			value := strings.TrimSpace(stream[loc[2]:loc[3]])
			pageIndex := locatePage(loc[0], pages)
			cand := entity.FieldCandidate{
				FieldName:  fp.name,
				Value:      value,
				Confidence: matchConfidence(value),
				PageNumber: pageIndex,
				Snippet:    snippetAround(stream, loc[0], loc[1], window),
				BBox:       bboxForValue(value, pages[pageIndex].Tokens),
				Source:     constants.SourceRegex,
				Metadata:   map[string]any{"pattern": fp.re.String()},
			}
			candidates = append(candidates, cand)
			logger.Debug("field candidate generated",
				"field", fp.name, "value", value, "page", pageIndex, "confidence", cand.Confidence)
		}
	}

	if vendor := guessVendor(pages); vendor != nil {
		candidates = append(candidates, *vendor)
	}
	return candidates
}

// locatePage walks the recorded page offsets of the concatenated stream and
// returns the index of the first page whose cumulative end exceeds the match
// start. Offsets account for the single newline separator between pages.
func locatePage(matchStart int, pages []entity.Page) int {
	cumulative := 0
	for _, p := range pages {
		length := len(p.Text) + 1
		if matchStart < cumulative+length {
			return p.Index
		}
		cumulative += length
	}
	return 0
}

// snippetAround returns a fixed window of context around a match span with
// embedded newlines collapsed to spaces.
func snippetAround(stream string, start, end, window int) string {
	lo := start - window
	if lo < 0 {
		lo = 0
	}
	hi := end + window
	if hi > len(stream) {
		hi = len(stream)
	}
	s := strings.ToValidUTF8(stream[lo:hi], "")
	return strings.ReplaceAll(s, "\n", " ")
}

// bboxForValue unions the boxes of every token whose text overlaps any
// whitespace-split fragment of the value (case-insensitive substring test).
// Returns nil when no token matches or the page carries no tokens.
func bboxForValue(value string, tokens []entity.Token) *entity.BBox {
	fragments := strings.Fields(strings.ToLower(value))
	if len(fragments) == 0 {
		return nil
	}
	var box *entity.BBox
	for _, tok := range tokens {
		if tok.Text == "" {
			continue
		}
		lower := strings.ToLower(tok.Text)
		for _, frag := range fragments {
			if strings.Contains(lower, frag) {
				if box == nil {
					b := tok.BBox
					box = &b
				} else {
					b := box.Union(tok.BBox)
					box = &b
				}
				break
			}
		}
	}
	return box
}

// matchConfidence favors mostly-numeric captures (dates, totals); non-numeric
// regex captures are more likely spurious. Capped at 0.99, empty value is 0.
func matchConfidence(value string) float64 {
	runes := []rune(value)
	if len(runes) == 0 {
		return 0.0
	}
	digits := 0
	for _, r := range runes {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	ratio := float64(digits) / float64(len(runes))
	conf := 0.5 + ratio*0.5
	if conf > 0.99 {
		conf = 0.99
	}
	return round2(conf)
}

// guessVendor treats the first non-blank header line of the first page as a
// vendor candidate. At most one vendor guess is emitted per document.
func guessVendor(pages []entity.Page) *entity.FieldCandidate {
	if len(pages) == 0 {
		return nil
	}
	first := pages[0]
	var header []string
	for _, line := range strings.Split(first.Text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			header = append(header, trimmed)
		}
		if len(header) == 10 {
			break
		}
	}
	if len(header) == 0 {
		return nil
	}
	candidate := header[0]
	confidence := 0.4
	if len(strings.Fields(candidate)) >= 2 {
		confidence = 0.6
	}
	return &entity.FieldCandidate{
		FieldName:  constants.FieldVendor,
		Value:      candidate,
		Confidence: confidence,
		PageNumber: first.Index,
		Snippet:    candidate,
		Source:     constants.SourceHeader,
	}
}
