package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Fallback is the deterministic analysis backend. It is always available and
// never fails: it derives a title and summary from the text itself and
// extracts topics, dates, figures, and concepts by case-insensitive keyword
// matching against a configurable table.
type Fallback struct {
	table KeywordTable
	delay time.Duration
}

// NewFallback creates a fallback backend with the given keyword table.
// A zero-value table means DefaultKeywordTable.
func NewFallback(table KeywordTable, delay time.Duration) *Fallback {
	if table.Empty() {
		table = DefaultKeywordTable()
	}
	return &Fallback{table: table, delay: delay}
}

// Name identifies the backend in logs.
func (f *Fallback) Name() string { return "fallback" }

// Available always reports true; the fallback is the chain's terminal backend.
func (f *Fallback) Available() bool { return true }

// Analyze performs deterministic keyword-driven analysis. The optional delay
// mimics remote processing time and honors ctx cancellation.
func (f *Fallback) Analyze(ctx context.Context, content, title string) (*DocumentAnalysis, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	analysisTitle := title
	if analysisTitle == "" {
		analysisTitle = extractTitle(content)
	}

	lower := strings.ToLower(content)

	topics := f.table.matchTopics(lower)
	tasks := f.generateTasks(topics)

	return &DocumentAnalysis{
		Title:            analysisTitle,
		Summary:          f.summarize(content, lower),
		MainTopics:       topics,
		StudyTasks:       tasks,
		KeyDates:         f.table.matchDates(lower),
		ImportantFigures: f.table.matchFigures(lower),
		Concepts:         f.table.matchConcepts(lower),
	}, nil
}

// extractTitle picks the first plausible title line: among the first 10
// non-blank lines, the first whose trimmed length is strictly between 5 and
// 100 characters.
func extractTitle(content string) string {
	seen := 0
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		seen++
		if seen > 10 {
			break
		}
		if n := len([]rune(trimmed)); n > 5 && n < 100 {
			return trimmed
		}
	}
	return "Document Analysis"
}

// summarize returns a keyword-triggered summary when one matches, otherwise a
// fixed-form sentence reporting the word count.
func (f *Fallback) summarize(content, lower string) string {
	for _, rule := range f.table.Summaries {
		if rule.matches(lower) {
			return rule.Summary
		}
	}
	wordCount := len(strings.Fields(content))
	return fmt.Sprintf("Document contains %d words covering various topics for academic study.", wordCount)
}

// generateTasks produces one task per topic via the template table, with a
// generic review template for unmatched topic names. Three or more tasks earn
// an extra synthesis task spanning all topics.
func (f *Fallback) generateTasks(topics []Topic) []StudyTask {
	var tasks []StudyTask

	for _, topic := range topics {
		if tpl, ok := f.table.taskTemplate(topic.Name); ok {
			t := tpl
			t.PageReference = topic.PageReference
			tasks = append(tasks, t)
			continue
		}
		tasks = append(tasks, StudyTask{
			Title:            fmt.Sprintf("Review %s", topic.Name),
			Description:      fmt.Sprintf("Study the key aspects and significance of %s", topic.Name),
			TaskType:         TaskReview,
			EstimatedMinutes: 30,
			Priority:         PriorityMedium,
			PageReference:    topic.PageReference,
			RelatedTopics:    []string{topic.Name},
		})
	}

	if len(tasks) >= 3 && f.table.Synthesis.Title != "" {
		names := make([]string, len(topics))
		for i, topic := range topics {
			names[i] = topic.Name
		}
		tasks = append(tasks, StudyTask{
			Title:            f.table.Synthesis.Title,
			Description:      f.table.Synthesis.Description,
			TaskType:         TaskSynthesize,
			EstimatedMinutes: 40,
			Priority:         PriorityHigh,
			RelatedTopics:    names,
		})
	}

	return tasks
}
