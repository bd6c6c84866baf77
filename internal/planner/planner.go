// Package planner materializes a DocumentAnalysis into packet sections and an
// ordered checklist.
package planner

import (
	"fmt"
	"strings"

	"github.com/starford/ansuz/internal/analysis"
	"github.com/starford/ansuz/internal/models"
)

// Plan is the planner's output: the section list and initial checklist for a
// new packet.
type Plan struct {
	Title          string
	Sections       []models.Section
	ChecklistItems []models.ChecklistItem
}

// Build converts a backend analysis into sections and checklist items.
//
// Section order is fixed: overview, one section per topic, then key concepts,
// timeline, and important figures when present. Checklist items mirror the
// analysis study tasks; when the backend produced none, one "Study {topic}"
// item per topic keeps the packet actionable.
func Build(a *analysis.DocumentAnalysis) Plan {
	plan := Plan{Title: a.Title}
	order := 0

	add := func(title, content, pageRef string, typ models.SectionType) {
		plan.Sections = append(plan.Sections, models.NewSection(title, content, pageRef, typ, order))
		order++
	}

	add("Document Overview", a.Summary, "", models.SectionContent)

	for _, topic := range a.MainTopics {
		add(topic.Name, topic.Description, topic.PageReference, models.SectionHeading)
	}

	if len(a.Concepts) > 0 {
		parts := make([]string, len(a.Concepts))
		for i, c := range a.Concepts {
			parts[i] = fmt.Sprintf("**%s**: %s\n\n*Importance*: %s", c.Name, c.Definition, c.Importance)
		}
		add("Key Concepts", strings.Join(parts, "\n\n"), "", models.SectionContent)
	}

	if len(a.KeyDates) > 0 {
		parts := make([]string, len(a.KeyDates))
		for i, d := range a.KeyDates {
			parts[i] = fmt.Sprintf("**%s**: %s\n%s", d.Date, d.Event, d.Significance)
		}
		add("Timeline", strings.Join(parts, "\n\n"), "", models.SectionContent)
	}

	if len(a.ImportantFigures) > 0 {
		parts := make([]string, len(a.ImportantFigures))
		for i, f := range a.ImportantFigures {
			timeframe := f.Timeframe
			if timeframe == "" {
				timeframe = "Unknown period"
			}
			parts[i] = fmt.Sprintf("**%s** (%s)\n*Role*: %s\n*Significance*: %s", f.Name, timeframe, f.Role, f.Significance)
		}
		add("Important Figures", strings.Join(parts, "\n\n"), "", models.SectionContent)
	}

	plan.ChecklistItems = buildChecklist(a)
	return plan
}

func buildChecklist(a *analysis.DocumentAnalysis) []models.ChecklistItem {
	var items []models.ChecklistItem

	for i, task := range a.StudyTasks {
		item := models.NewChecklistItem(task.Title, task.PageReference, i)
		if task.Description != "" {
			item.Notes = task.Description
		}
		items = append(items, item)
	}
	if len(items) > 0 {
		return items
	}

	// No tasks from the backend: fall back to one study item per topic.
	for i, topic := range a.MainTopics {
		item := models.NewChecklistItem(fmt.Sprintf("Study %s", topic.Name), topic.PageReference, i)
		item.Notes = topic.Description
		items = append(items, item)
	}
	return items
}

// BuildStructural derives a checklist from segmenter output alone, used when
// no analysis backend runs. Heading sections become items; without headings
// the first ten content sections do. A closing review item is always added.
func BuildStructural(sections []models.Section) []models.ChecklistItem {
	var items []models.ChecklistItem
	order := 0

	for _, s := range sections {
		if s.Type != models.SectionHeading {
			continue
		}
		items = append(items, models.NewChecklistItem(s.Title, s.PageReference, order))
		order++
	}

	if len(items) == 0 {
		for _, s := range sections {
			if s.Type != models.SectionContent {
				continue
			}
			items = append(items, models.NewChecklistItem(s.Title, s.PageReference, order))
			order++
			if order == 10 {
				break
			}
		}
	}

	items = append(items, models.NewChecklistItem("Review and summarize key findings", "", order))
	return items
}
