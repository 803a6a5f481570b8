package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daviidwuu/invoiceAI/constants"
	"github.com/daviidwuu/invoiceAI/internal/entity"
)

const sampleInvoiceText = "Invoice Number: INV-2024-001\nDate: 03/14/2024\nTotal Due: $1,250.00"

func samplePages() []entity.Page {
	return []entity.Page{{Index: 0, Text: sampleInvoiceText, Confidence: 0.9}}
}

func candidatesByField(cands []entity.FieldCandidate) map[string][]entity.FieldCandidate {
	out := make(map[string][]entity.FieldCandidate)
	for _, c := range cands {
		out[c.FieldName] = append(out[c.FieldName], c)
	}
	return out
}

func TestGenerateCandidates_SampleInvoice(t *testing.T) {
	cands := GenerateCandidates(samplePages(), 60, nil)
	byField := candidatesByField(cands)

	require.Len(t, byField[constants.FieldInvoiceID], 1)
	assert.Equal(t, "INV-2024-001", byField[constants.FieldInvoiceID][0].Value)
	assert.Equal(t, constants.SourceRegex, byField[constants.FieldInvoiceID][0].Source)

	require.Len(t, byField[constants.FieldInvoiceDate], 1)
	assert.Equal(t, "03/14/2024", byField[constants.FieldInvoiceDate][0].Value)

	require.Len(t, byField[constants.FieldTotal], 1)
	assert.Equal(t, "$1,250.00", byField[constants.FieldTotal][0].Value)

	for _, c := range cands {
		assert.Equal(t, 0, c.PageNumber)
		assert.GreaterOrEqual(t, c.Confidence, 0.0)
		assert.LessOrEqual(t, c.Confidence, 1.0)
	}
}

func TestGenerateCandidates_VendorGuess(t *testing.T) {
	pages := []entity.Page{{Index: 0, Text: "Acme Corporation\n123 Main St\nInvoice #42"}}
	byField := candidatesByField(GenerateCandidates(pages, 60, nil))

	require.Len(t, byField[constants.FieldVendor], 1)
	vendor := byField[constants.FieldVendor][0]
	assert.Equal(t, "Acme Corporation", vendor.Value)
	assert.Equal(t, 0.6, vendor.Confidence)
	assert.Equal(t, constants.SourceHeader, vendor.Source)
}

func TestGenerateCandidates_SingleWordVendorLowerConfidence(t *testing.T) {
	pages := []entity.Page{{Index: 0, Text: "Acme\nsomething else"}}
	byField := candidatesByField(GenerateCandidates(pages, 60, nil))

	require.Len(t, byField[constants.FieldVendor], 1)
	assert.Equal(t, 0.4, byField[constants.FieldVendor][0].Confidence)
}

func TestGenerateCandidates_AtMostOneVendorGuess(t *testing.T) {
	pages := []entity.Page{
		{Index: 0, Text: "First Vendor Inc\nbody"},
		{Index: 1, Text: "Second Vendor Ltd\nbody"},
	}
	byField := candidatesByField(GenerateCandidates(pages, 60, nil))
	require.Len(t, byField[constants.FieldVendor], 1)
	assert.Equal(t, "First Vendor Inc", byField[constants.FieldVendor][0].Value)
}

func TestGenerateCandidates_PageMapping(t *testing.T) {
	pages := []entity.Page{
		{Index: 0, Text: "cover sheet, nothing useful"},
		{Index: 1, Text: "Total: $50.00"},
	}
	byField := candidatesByField(GenerateCandidates(pages, 60, nil))

	require.Len(t, byField[constants.FieldTotal], 1)
	assert.Equal(t, 1, byField[constants.FieldTotal][0].PageNumber)

	for _, c := range GenerateCandidates(pages, 60, nil) {
		assert.GreaterOrEqual(t, c.PageNumber, 0)
		assert.Less(t, c.PageNumber, len(pages))
	}
}

func TestGenerateCandidates_AllMatchesNotJustFirst(t *testing.T) {
	pages := []entity.Page{
		{Index: 0, Text: "Total: $10.00"},
		{Index: 1, Text: "Total: $20.00"},
	}
	byField := candidatesByField(GenerateCandidates(pages, 60, nil))

	require.Len(t, byField[constants.FieldTotal], 2)
	assert.Equal(t, "$10.00", byField[constants.FieldTotal][0].Value)
	assert.Equal(t, 0, byField[constants.FieldTotal][0].PageNumber)
	assert.Equal(t, "$20.00", byField[constants.FieldTotal][1].Value)
	assert.Equal(t, 1, byField[constants.FieldTotal][1].PageNumber)
}

func TestGenerateCandidates_SnippetCollapsesNewlines(t *testing.T) {
	byField := candidatesByField(GenerateCandidates(samplePages(), 60, nil))

	require.Len(t, byField[constants.FieldInvoiceDate], 1)
	snippet := byField[constants.FieldInvoiceDate][0].Snippet
	assert.NotContains(t, snippet, "\n")
	assert.Contains(t, snippet, "Date: 03/14/2024")
}

func TestGenerateCandidates_BBoxFromTokens(t *testing.T) {
	pages := []entity.Page{{
		Index: 0,
		Text:  "Total Due: $1,250.00",
		Tokens: []entity.Token{
			{Text: "Total", BBox: entity.BBox{X0: 10, Y0: 700, X1: 40, Y1: 712}},
			{Text: "Due:", BBox: entity.BBox{X0: 44, Y0: 700, X1: 64, Y1: 712}},
			{Text: "$1,250.00", BBox: entity.BBox{X0: 70, Y0: 700, X1: 130, Y1: 712}},
		},
	}}
	byField := candidatesByField(GenerateCandidates(pages, 60, nil))

	require.Len(t, byField[constants.FieldTotal], 1)
	box := byField[constants.FieldTotal][0].BBox
	require.NotNil(t, box)
	assert.Equal(t, entity.BBox{X0: 70, Y0: 700, X1: 130, Y1: 712}, *box)
}

func TestGenerateCandidates_NoTokensNoBBox(t *testing.T) {
	byField := candidatesByField(GenerateCandidates(samplePages(), 60, nil))
	require.Len(t, byField[constants.FieldTotal], 1)
	assert.Nil(t, byField[constants.FieldTotal][0].BBox)
}

func TestGenerateCandidates_EmptyPagesNoCandidates(t *testing.T) {
	assert.Empty(t, GenerateCandidates(nil, 60, nil))
	assert.Empty(t, GenerateCandidates([]entity.Page{}, 60, nil))
}

func TestGenerateCandidates_Idempotent(t *testing.T) {
	pages := []entity.Page{
		{Index: 0, Text: sampleInvoiceText, Confidence: 0.9},
		{Index: 1, Text: "Total: $99.00\nAnother Vendor"},
	}
	first := GenerateCandidates(pages, 60, nil)
	second := GenerateCandidates(pages, 60, nil)
	assert.Equal(t, first, second)
}

func TestMatchConfidence(t *testing.T) {
	assert.Equal(t, 0.0, matchConfidence(""))
	// all digits capped at 0.99
	assert.Equal(t, 0.99, matchConfidence("20240314"))
	// no digits
	assert.Equal(t, 0.5, matchConfidence("abc"))
	// $1,250.00: 6 digits of 9 chars
	assert.InDelta(t, 0.83, matchConfidence("$1,250.00"), 0.001)
}
