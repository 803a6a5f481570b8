package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/daviidwuu/invoiceAI/internal/entity"
)

func tok(texts ...string) []entity.Token {
	out := make([]entity.Token, len(texts))
	for i, s := range texts {
		out[i] = entity.Token{Text: s}
	}
	return out
}

func TestPageConfidence_NoTokens(t *testing.T) {
	assert.Equal(t, 0.0, PageConfidence(nil))
	assert.Equal(t, 0.0, PageConfidence([]entity.Token{}))
}

func TestPageConfidence_EmptyTexts(t *testing.T) {
	assert.Equal(t, 0.0, PageConfidence(tok("", "")))
}

func TestPageConfidence_DiverseLongTokens(t *testing.T) {
	// mean length 10 caps the length score at 1.0; all-distinct tokens
	// keep diversity near 1.0
	got := PageConfidence(tok("Washington", "Enterprise", "Department"))
	assert.InDelta(t, 1.0, got, 0.01)
}

func TestPageConfidence_RepetitiveShortTokens(t *testing.T) {
	tokens := tok("aa", "aa", "aa", "aa", "aa", "aa", "aa", "aa", "aa", "aa")
	// length score 0.2, diversity 1/10
	assert.InDelta(t, 0.15, PageConfidence(tokens), 0.01)
}

func TestPageConfidence_WithinBounds(t *testing.T) {
	cases := [][]entity.Token{
		tok("a"),
		tok("Invoice"),
		tok("Invoice", "Number", "INV-2024-001"),
		tok("x", "x", "x", "y"),
	}
	for _, tokens := range cases {
		got := PageConfidence(tokens)
		assert.GreaterOrEqual(t, got, 0.0)
		assert.LessOrEqual(t, got, 1.0)
	}
}
