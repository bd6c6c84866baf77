package segment

import (
	"strings"
	"testing"

	"github.com/starford/ansuz/internal/models"
)

func TestPage_HeadingWithContent(t *testing.T) {
	text := "METHODOLOGY\nfirst line of content.\nsecond line of content.\nthird line of content."
	sections := Page(text, 2)

	if len(sections) != 1 {
		t.Fatalf("len(sections) = %d, want 1", len(sections))
	}
	s := sections[0]
	if s.Title != "METHODOLOGY" {
		t.Errorf("title = %q", s.Title)
	}
	if s.Type != models.SectionHeading {
		t.Errorf("type = %q, want heading", s.Type)
	}
	want := "first line of content.\nsecond line of content.\nthird line of content."
	if s.Content != want {
		t.Errorf("content = %q, want %q", s.Content, want)
	}
	if s.PageReference != "p. 2" {
		t.Errorf("pageReference = %q, want %q", s.PageReference, "p. 2")
	}
	if s.Order != 0 {
		t.Errorf("order = %d, want 0", s.Order)
	}
}

func TestPage_NoHeadings(t *testing.T) {
	text := "just some plain prose, sentence one.\nand here is sentence two, equally plain."
	sections := Page(text, 5)

	if len(sections) != 1 {
		t.Fatalf("len(sections) = %d, want 1", len(sections))
	}
	if sections[0].Title != "Page 5 Content" {
		t.Errorf("title = %q, want %q", sections[0].Title, "Page 5 Content")
	}
	if sections[0].Type != models.SectionContent {
		t.Errorf("type = %q, want content", sections[0].Type)
	}
}

func TestPage_Empty(t *testing.T) {
	if got := Page("", 1); len(got) != 0 {
		t.Errorf("empty page produced %d sections", len(got))
	}
	if got := Page("\n  \n\t\n", 1); len(got) != 0 {
		t.Errorf("blank page produced %d sections", len(got))
	}
}

func TestPage_MultipleHeadings(t *testing.T) {
	text := strings.Join([]string{
		"1. Introduction",
		"intro prose, the usual framing sentences.",
		"2. Methods",
		"methods prose, describing the apparatus.",
		"more methods prose, describing the sample.",
	}, "\n")
	sections := Page(text, 1)

	if len(sections) != 2 {
		t.Fatalf("len(sections) = %d, want 2", len(sections))
	}
	if sections[0].Title != "1. Introduction" || sections[1].Title != "2. Methods" {
		t.Errorf("titles = %q, %q", sections[0].Title, sections[1].Title)
	}
	if sections[0].Order != 0 || sections[1].Order != 1 {
		t.Errorf("orders = %d, %d, want 0, 1", sections[0].Order, sections[1].Order)
	}
}

func TestPage_TrailingHeadingWithoutContentDropped(t *testing.T) {
	text := "some prose without any heading structure, line one.\nSUMMARY"
	sections := Page(text, 1)

	// The trailing heading has no content, so only the heading-less prose
	// would have been accumulated under it and dropped per the flush rule.
	for _, s := range sections {
		if s.Title == "SUMMARY" && s.Content == "" {
			t.Error("empty trailing heading should not be emitted")
		}
	}
}

func TestDocument_PageRefsAndPerPageOrder(t *testing.T) {
	pages := []string{
		"OVERVIEW\nfirst page content, plain sentences.",
		"",
		"DETAILS\nsecond page content, plain sentences.",
	}
	sections := Document(pages)

	if len(sections) != 2 {
		t.Fatalf("len(sections) = %d, want 2", len(sections))
	}
	if sections[0].PageReference != "p. 1" {
		t.Errorf("first pageReference = %q", sections[0].PageReference)
	}
	if sections[1].PageReference != "p. 3" {
		t.Errorf("second pageReference = %q, want p. 3", sections[1].PageReference)
	}
	// Order resets per page.
	if sections[0].Order != 0 || sections[1].Order != 0 {
		t.Errorf("orders = %d, %d, want 0, 0", sections[0].Order, sections[1].Order)
	}
}
