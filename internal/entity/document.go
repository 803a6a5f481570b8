package entity

// BBox is an axis-aligned rectangle in page coordinate space.
type BBox struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Union expands the box to cover other and returns the result.
func (b BBox) Union(other BBox) BBox {
	out := b
	if other.X0 < out.X0 {
		out.X0 = other.X0
	}
	if other.Y0 < out.Y0 {
		out.Y0 = other.Y0
	}
	if other.X1 > out.X1 {
		out.X1 = other.X1
	}
	if other.Y1 > out.Y1 {
		out.Y1 = other.Y1
	}
	return out
}

// Token is a positioned word on a page.
type Token struct {
	Text string `json:"text"`
	BBox BBox   `json:"bbox"`
}

// Page is the per-page output of one acquisition tier. Index is the
// document's physical page order, contiguous from 0. Immutable once produced.
type Page struct {
	Index      int     `json:"index"`
	Text       string  `json:"text"`
	Tokens     []Token `json:"tokens"`
	Confidence float64 `json:"confidence"`
}

// ExtractionResult is the one-shot output of a document extraction run.
type ExtractionResult struct {
	SourcePath      string           `json:"source_path"`
	Pages           []Page           `json:"pages"`
	FieldCandidates []FieldCandidate `json:"field_candidates"`
	OCRUsed         bool             `json:"ocr_used"`
}
