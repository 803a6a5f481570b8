package extract

import (
	"math"

	"github.com/daviidwuu/invoiceAI/internal/entity"
)

// PageConfidence scores a page's tokens for text quality in [0,1].
//
// Garbled OCR output tends to produce short, highly repetitive or highly
// fragmented tokens, so the score blends mean token length with token
// diversity. This is a cheap relative quality signal used to decide whether
// OCR is needed, not a calibrated probability.
func PageConfidence(tokens []entity.Token) float64 {
	if len(tokens) == 0 {
		return 0.0
	}
	var totalLen int
	distinct := make(map[string]struct{}, len(tokens))
	n := 0
	for _, tok := range tokens {
		if tok.Text == "" {
			continue
		}
		totalLen += len([]rune(tok.Text))
		distinct[tok.Text] = struct{}{}
		n++
	}
	if n == 0 {
		return 0.0
	}
	lengthScore := math.Min(float64(totalLen)/float64(n)/10.0, 1.0)
	diversityScore := math.Min(float64(len(distinct))/(float64(len(tokens))+1e-5), 1.0)
	return round2((lengthScore + diversityScore) / 2.0)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
