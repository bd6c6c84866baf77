package analysis

import (
	"context"
	"strings"
	"testing"
)

func TestFallback_AlwaysAvailable(t *testing.T) {
	f := NewFallback(KeywordTable{}, 0)
	if !f.Available() {
		t.Fatal("fallback must always be available")
	}
}

func TestFallback_TitleExtraction(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "first plausible line wins",
			content: "ok\nThe History of Mesoamerica\nbody text follows here.",
			want:    "The History of Mesoamerica",
		},
		{
			name:    "short lines skipped",
			content: "a\nbc\nA Valid Title Line\nrest",
			want:    "A Valid Title Line",
		},
		{
			name:    "no plausible line yields default",
			content: "ab\ncd\n" + strings.Repeat("x", 150),
			want:    "Document Analysis",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFallback(KeywordTable{}, 0)
			got, err := f.Analyze(context.Background(), tt.content, "")
			if err != nil {
				t.Fatalf("Analyze: %v", err)
			}
			if got.Title != tt.want {
				t.Errorf("title = %q, want %q", got.Title, tt.want)
			}
		})
	}
}

func TestFallback_ExplicitTitlePreferred(t *testing.T) {
	f := NewFallback(KeywordTable{}, 0)
	got, err := f.Analyze(context.Background(), "Some Other Candidate Title\ntext", "Given Title")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if got.Title != "Given Title" {
		t.Errorf("title = %q, want caller-provided title", got.Title)
	}
}

func TestFallback_WordCountSummary(t *testing.T) {
	f := NewFallback(KeywordTable{}, 0)
	got, err := f.Analyze(context.Background(), "one two three four five", "T")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if got.Summary != "Document contains 5 words covering various topics for academic study." {
		t.Errorf("summary = %q", got.Summary)
	}
}

func TestFallback_KeywordExtraction(t *testing.T) {
	content := "Lecture notes on MESOAMERICA and the Aztec empire.\n" +
		"The conquest of 1521 ended it. Tribute flowed to Moctezuma."
	f := NewFallback(DefaultKeywordTable(), 0)

	got, err := f.Analyze(context.Background(), content, "T")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if len(got.MainTopics) != 2 {
		t.Fatalf("topics = %d, want 2 (mesoamerica, aztec)", len(got.MainTopics))
	}
	if got.MainTopics[0].Name != "Mesoamerican Civilizations" || got.MainTopics[1].Name != "Aztec Empire" {
		t.Errorf("topics = %v", got.MainTopics)
	}
	if len(got.KeyDates) != 1 || got.KeyDates[0].Date != "1521" {
		t.Errorf("keyDates = %v", got.KeyDates)
	}
	if len(got.ImportantFigures) != 1 || got.ImportantFigures[0].Name != "Moctezuma II" {
		t.Errorf("figures = %v", got.ImportantFigures)
	}
	if len(got.Concepts) != 1 || got.Concepts[0].Name != "Tribute System" {
		t.Errorf("concepts = %v", got.Concepts)
	}
	// Keyword-triggered summary takes precedence over the word count form.
	if !strings.Contains(got.Summary, "Mesoamerican civilizations") {
		t.Errorf("summary = %q, want keyword-triggered summary", got.Summary)
	}
}

func TestFallback_NoDuplicateRecordsForRepeatedKeyword(t *testing.T) {
	content := "aztec aztec aztec AZTEC aztec"
	f := NewFallback(DefaultKeywordTable(), 0)
	got, err := f.Analyze(context.Background(), content, "T")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(got.MainTopics) != 1 {
		t.Errorf("topics = %d, want 1 despite repeated keyword", len(got.MainTopics))
	}
}

func TestFallback_TaskTemplatesAndGenericFallback(t *testing.T) {
	content := "mesoamerica aztec olmec"
	f := NewFallback(DefaultKeywordTable(), 0)
	got, err := f.Analyze(context.Background(), content, "T")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	// Three topic tasks plus the synthesis task.
	if len(got.StudyTasks) != 4 {
		t.Fatalf("tasks = %d, want 4", len(got.StudyTasks))
	}
	if got.StudyTasks[0].Title != "Map the major Mesoamerican civilizations" {
		t.Errorf("task 0 = %q, want template task", got.StudyTasks[0].Title)
	}
	// Olmec Culture has no template: generic review task.
	if got.StudyTasks[2].Title != "Review Olmec Culture" {
		t.Errorf("task 2 = %q, want generic review task", got.StudyTasks[2].Title)
	}
	if got.StudyTasks[2].TaskType != TaskReview {
		t.Errorf("task 2 type = %q", got.StudyTasks[2].TaskType)
	}

	synth := got.StudyTasks[3]
	if synth.TaskType != TaskSynthesize {
		t.Errorf("synthesis type = %q", synth.TaskType)
	}
	if len(synth.RelatedTopics) != 3 {
		t.Errorf("synthesis relatedTopics = %v, want all topic names", synth.RelatedTopics)
	}
}

func TestFallback_FewTasksNoSynthesis(t *testing.T) {
	f := NewFallback(DefaultKeywordTable(), 0)
	got, err := f.Analyze(context.Background(), "aztec only", "T")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(got.StudyTasks) != 1 {
		t.Errorf("tasks = %d, want 1 (no synthesis below 3 tasks)", len(got.StudyTasks))
	}
}

func TestFallback_Deterministic(t *testing.T) {
	content := "mesoamerica maya tribute calendar cortes"
	f := NewFallback(DefaultKeywordTable(), 0)

	first, err := f.Analyze(context.Background(), content, "T")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	for i := 0; i < 3; i++ {
		again, err := f.Analyze(context.Background(), content, "T")
		if err != nil {
			t.Fatalf("Analyze: %v", err)
		}
		if len(again.MainTopics) != len(first.MainTopics) ||
			len(again.StudyTasks) != len(first.StudyTasks) ||
			again.Summary != first.Summary {
			t.Fatal("fallback analysis is not deterministic")
		}
	}
}
