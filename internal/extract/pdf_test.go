package extract

import (
	"os"
	"path/filepath"
	"testing"

	"rsc.io/pdf"
)

func TestPages_MissingFile(t *testing.T) {
	if _, err := Pages(filepath.Join(t.TempDir(), "nope.pdf")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestPages_NotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.pdf")
	if err := os.WriteFile(path, []byte("plain text, not a pdf"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Pages(path); err == nil {
		t.Fatal("expected error for non-PDF content")
	}
}

func TestAssembleLines_GroupsByY(t *testing.T) {
	texts := []pdf.Text{
		{X: 10, Y: 700, S: "METHODOLOGY"},
		{X: 10, Y: 680, S: "first"},
		{X: 45, Y: 680, S: "line"},
		{X: 10, Y: 660, S: "second line"},
	}

	got := assembleLines(texts)
	want := "METHODOLOGY\nfirst line\nsecond line"
	if got != want {
		t.Errorf("assembleLines = %q, want %q", got, want)
	}
}

func TestAssembleLines_SortsFragments(t *testing.T) {
	// Fragments arrive out of order; output must still read top-to-bottom,
	// left-to-right.
	texts := []pdf.Text{
		{X: 50, Y: 680, S: "world"},
		{X: 10, Y: 700, S: "Title"},
		{X: 10, Y: 680, S: "hello"},
	}

	got := assembleLines(texts)
	want := "Title\nhello world"
	if got != want {
		t.Errorf("assembleLines = %q, want %q", got, want)
	}
}

func TestAssembleLines_Empty(t *testing.T) {
	if got := assembleLines(nil); got != "" {
		t.Errorf("assembleLines(nil) = %q", got)
	}
}

func TestAssembleLines_ToleratesJitter(t *testing.T) {
	// Fragments within the Y tolerance stay on one line.
	texts := []pdf.Text{
		{X: 10, Y: 500.0, S: "same"},
		{X: 40, Y: 501.2, S: "line"},
	}
	if got := assembleLines(texts); got != "same line" {
		t.Errorf("assembleLines = %q, want %q", got, "same line")
	}
}
