// Package extract pulls per-page text out of PDF documents.
package extract

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"rsc.io/pdf"
)

// yTolerance is the vertical distance (in PDF units) within which two text
// fragments are considered part of the same line.
const yTolerance = 2.0

// Pages opens the PDF at path and returns the text of every page, in order.
// A page whose content cannot be decoded contributes an empty string instead
// of aborting the document.
func Pages(path string) ([]string, error) {
	doc, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("extract: open pdf: %w", err)
	}

	total := doc.NumPage()
	pages := make([]string, 0, total)
	for i := 1; i <= total; i++ {
		pages = append(pages, pageText(doc, i))
	}
	return pages, nil
}

// pageText extracts one page, recovering from decoder panics on malformed
// content streams so that a single bad page is skipped silently.
func pageText(doc *pdf.Reader, number int) (text string) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
		}
	}()

	page := doc.Page(number)
	if page.V.IsNull() {
		return ""
	}
	return assembleLines(page.Content().Text)
}

// assembleLines reconstructs line structure from positioned text fragments:
// fragments are sorted top-to-bottom, left-to-right, and grouped into lines
// by vertical proximity. The segmenter's heading heuristics depend on this
// line structure, so a flat space-joined string is not enough.
func assembleLines(texts []pdf.Text) string {
	if len(texts) == 0 {
		return ""
	}

	sorted := make([]pdf.Text, len(texts))
	copy(sorted, texts)
	sort.SliceStable(sorted, func(i, j int) bool {
		if math.Abs(sorted[i].Y-sorted[j].Y) > yTolerance {
			return sorted[i].Y > sorted[j].Y // PDF Y grows upward
		}
		return sorted[i].X < sorted[j].X
	})

	var b strings.Builder
	lineY := sorted[0].Y
	lineHasText := false

	for _, t := range sorted {
		if t.S == "" {
			continue
		}
		if math.Abs(t.Y-lineY) > yTolerance {
			b.WriteByte('\n')
			lineY = t.Y
			lineHasText = false
		}
		if lineHasText && !strings.HasPrefix(t.S, " ") {
			b.WriteByte(' ')
		}
		b.WriteString(t.S)
		lineHasText = true
	}

	return b.String()
}
