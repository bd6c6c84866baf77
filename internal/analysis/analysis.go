// Package analysis defines the document-analysis contract and its backends:
// a remote LLM-backed service and a deterministic keyword fallback, tried in
// priority order by the Router.
package analysis

import (
	"context"
	"encoding/json"
)

// Priority ranks a topic or task.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// UnmarshalJSON tolerates unknown priority strings by falling back to medium,
// so one bad enum value does not fail the whole response parse.
func (p *Priority) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch Priority(s) {
	case PriorityHigh, PriorityMedium, PriorityLow:
		*p = Priority(s)
	default:
		*p = PriorityMedium
	}
	return nil
}

// TaskType classifies a study task by the kind of cognitive work it asks for.
type TaskType string

const (
	TaskMemorize   TaskType = "memorize"
	TaskUnderstand TaskType = "understand"
	TaskAnalyze    TaskType = "analyze"
	TaskCompare    TaskType = "compare"
	TaskSynthesize TaskType = "synthesize"
	TaskReview     TaskType = "review"
)

// UnmarshalJSON falls back to understand on unknown task types.
func (t *TaskType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch TaskType(s) {
	case TaskMemorize, TaskUnderstand, TaskAnalyze, TaskCompare, TaskSynthesize, TaskReview:
		*t = TaskType(s)
	default:
		*t = TaskUnderstand
	}
	return nil
}

// Topic is one main theme of the document.
type Topic struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Priority      Priority `json:"priority"`
	PageReference string   `json:"pageReference,omitempty"`
}

// StudyTask is one actionable study activity proposed by a backend.
type StudyTask struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	TaskType         TaskType `json:"taskType"`
	EstimatedMinutes int      `json:"estimatedMinutes"`
	Priority         Priority `json:"priority"`
	PageReference    string   `json:"pageReference,omitempty"`
	RelatedTopics    []string `json:"relatedTopics"`
}

// HistoricalDate is a dated event worth studying.
type HistoricalDate struct {
	Date          string `json:"date"`
	Event         string `json:"event"`
	Significance  string `json:"significance"`
	PageReference string `json:"pageReference,omitempty"`
}

// Person is an important figure mentioned in the document.
type Person struct {
	Name          string `json:"name"`
	Role          string `json:"role"`
	Significance  string `json:"significance"`
	Timeframe     string `json:"timeframe,omitempty"`
	PageReference string `json:"pageReference,omitempty"`
}

// Concept is a named idea with a definition.
type Concept struct {
	Name            string   `json:"name"`
	Definition      string   `json:"definition"`
	Importance      string   `json:"importance"`
	RelatedConcepts []string `json:"relatedConcepts"`
	PageReference   string   `json:"pageReference,omitempty"`
}

// DocumentAnalysis is the structured output of a backend. Page references in
// child records use the literal "p. N" format. It is transient: the planner
// consumes it exactly once to build a packet.
type DocumentAnalysis struct {
	Title            string           `json:"title"`
	Summary          string           `json:"summary"`
	MainTopics       []Topic          `json:"mainTopics"`
	StudyTasks       []StudyTask      `json:"studyTasks"`
	KeyDates         []HistoricalDate `json:"keyDates"`
	ImportantFigures []Person         `json:"importantFigures"`
	Concepts         []Concept        `json:"concepts"`
}

// Backend is a pluggable analysis strategy.
type Backend interface {
	// Analyze produces a DocumentAnalysis from full document text. title may
	// be empty. The call must respect ctx cancellation.
	Analyze(ctx context.Context, content, title string) (*DocumentAnalysis, error)
	// Available reports whether the backend can currently be attempted.
	Available() bool
	// Name identifies the backend in logs.
	Name() string
}
