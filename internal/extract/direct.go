package extract

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/daviidwuu/invoiceAI/constants"
	"github.com/daviidwuu/invoiceAI/internal/entity"
)

// rowTolerance is the vertical distance (pt) within which text fragments
// are considered part of the same line.
const rowTolerance = 2.0

// DirectTier reads the PDF text layer with positioned fragments and
// assembles word tokens with true bounding boxes. Highest-trust tier when
// the document carries a usable text layer.
type DirectTier struct {
	logger *slog.Logger
}

func NewDirectTier(logger *slog.Logger) *DirectTier {
	if logger == nil {
		logger = slog.Default()
	}
	return &DirectTier{logger: logger}
}

func (t *DirectTier) Name() string { return constants.TierDirect }

func (t *DirectTier) Extract(ctx context.Context, path string) (pages []entity.Page) {
	// The underlying reader panics on some malformed PDFs; a tier must
	// surface any internal fault as an empty sequence.
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("direct tier panicked", "path", path, "panic", r)
			pages = nil
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		t.logger.Warn("direct tier cannot open document", "path", path, "error", err)
		return nil
	}
	defer func() { _ = f.Close() }()

	total := reader.NumPage()
	for num := 1; num <= total; num++ {
		if ctx.Err() != nil {
			t.logger.Warn("direct tier cancelled", "path", path, "page", num)
			return nil
		}
		page := entity.Page{Index: num - 1}
		p := reader.Page(num)
		if !p.V.IsNull() {
			tokens, text := assembleWords(p.Content().Text)
			page.Text = text
			page.Tokens = tokens
			page.Confidence = PageConfidence(tokens)
		}
		pages = append(pages, page)
	}
	t.logger.Debug("direct tier extracted", "path", path, "pages", len(pages))
	return pages
}

// assembleWords groups positioned text fragments into word tokens and
// reconstructs the page text in reading order (top-to-bottom rows,
// left-to-right within a row). PDF coordinates have their origin at the
// bottom-left, so higher Y means higher on the page.
func assembleWords(frags []pdf.Text) ([]entity.Token, string) {
	kept := make([]pdf.Text, 0, len(frags))
	for _, fr := range frags {
		if strings.TrimSpace(fr.S) != "" {
			kept = append(kept, fr)
		}
	}
	if len(kept) == 0 {
		return nil, ""
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if diff := kept[i].Y - kept[j].Y; diff > rowTolerance || diff < -rowTolerance {
			return kept[i].Y > kept[j].Y
		}
		return kept[i].X < kept[j].X
	})

	var (
		tokens []entity.Token
		text   strings.Builder
		word   strings.Builder
		box    entity.BBox
		prev   *pdf.Text
	)
	flush := func() {
		if word.Len() == 0 {
			return
		}
		tokens = append(tokens, entity.Token{Text: word.String(), BBox: box})
		word.Reset()
	}
	for i := range kept {
		fr := kept[i]
		frBox := entity.BBox{X0: fr.X, Y0: fr.Y, X1: fr.X + fr.W, Y1: fr.Y + fr.FontSize}
		switch {
		case prev == nil:
			// first fragment on the page
		case fr.Y < prev.Y-rowTolerance:
			flush()
			text.WriteByte('\n')
		case fr.X > prev.X+prev.W+wordGap(prev.FontSize):
			flush()
			text.WriteByte(' ')
		}
		if word.Len() == 0 {
			box = frBox
		} else {
			box = box.Union(frBox)
		}
		s := strings.TrimSpace(fr.S)
		word.WriteString(s)
		text.WriteString(s)
		prev = &kept[i]
	}
	flush()
	return tokens, text.String()
}

// wordGap is the horizontal gap beyond which two fragments belong to
// separate words, scaled with the font size.
func wordGap(fontSize float64) float64 {
	gap := fontSize * 0.25
	if gap < 1.0 {
		gap = 1.0
	}
	return gap
}
