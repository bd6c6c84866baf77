package segment

import (
	"fmt"
	"strings"

	"github.com/starford/ansuz/internal/models"
)

// Page splits one page's raw text into ordered sections. Lines classified as
// headings open a new section; everything else accumulates as content. A page
// whose text contains no heading at all yields a single "Page N Content"
// section; a page with no non-blank lines yields none.
func Page(pageText string, pageNumber int) []models.Section {
	var (
		sections     []models.Section
		content      []string
		currentTitle string
		haveTitle    bool
		order        int
	)

	pageRef := fmt.Sprintf("p. %d", pageNumber)

	flush := func(typ models.SectionType) {
		if haveTitle && len(content) > 0 {
			sections = append(sections, models.NewSection(
				currentTitle,
				strings.Join(content, "\n"),
				pageRef,
				typ,
				order,
			))
			order++
		}
	}

	for _, line := range strings.Split(pageText, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if IsHeading(trimmed) {
			flush(models.SectionHeading)
			currentTitle = trimmed
			haveTitle = true
			content = content[:0]
			continue
		}
		content = append(content, trimmed)
	}

	// Final pending group.
	if haveTitle {
		flush(models.SectionHeading)
	} else if len(content) > 0 {
		sections = append(sections, models.NewSection(
			fmt.Sprintf("Page %d Content", pageNumber),
			strings.Join(content, "\n"),
			pageRef,
			models.SectionContent,
			order,
		))
	}

	return sections
}

// Document runs Page across all pages and concatenates the results. Pages are
// 0-indexed in the slice and 1-indexed in page references. Section order
// restarts on every page; downstream consumers only sort within a page, so
// the reset is preserved rather than replaced with a document-global counter.
func Document(pages []string) []models.Section {
	var sections []models.Section
	for i, text := range pages {
		sections = append(sections, Page(text, i+1)...)
	}
	return sections
}
