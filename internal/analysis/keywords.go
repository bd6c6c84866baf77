package analysis

import (
	"strings"
)

// Rule ties trigger keywords to one extracted record. Matching is
// case-insensitive substring search; a rule yields its record at most once no
// matter how often a keyword recurs.
type Rule struct {
	Keywords []string `yaml:"keywords"`
}

func (r Rule) matches(lower string) bool {
	for _, kw := range r.Keywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// TopicRule maps keywords to a topic record.
type TopicRule struct {
	Rule  `yaml:",inline"`
	Topic Topic `yaml:"topic"`
}

// DateRule maps keywords to a key-date record.
type DateRule struct {
	Rule `yaml:",inline"`
	Date HistoricalDate `yaml:"date"`
}

// FigureRule maps keywords to an important-figure record.
type FigureRule struct {
	Rule   `yaml:",inline"`
	Figure Person `yaml:"figure"`
}

// ConceptRule maps keywords to a concept record.
type ConceptRule struct {
	Rule    `yaml:",inline"`
	Concept Concept `yaml:"concept"`
}

// SummaryRule overrides the word-count summary when a keyword is present.
type SummaryRule struct {
	Rule    `yaml:",inline"`
	Summary string `yaml:"summary"`
}

// TaskTemplate is a pre-written study task bound to a topic name.
type TaskTemplate struct {
	TopicName string    `yaml:"topic_name"`
	Task      StudyTask `yaml:"task"`
}

// SynthesisTemplate is the extra cross-topic task appended when the fallback
// generates three or more tasks.
type SynthesisTemplate struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// KeywordTable is the fallback backend's entire domain knowledge. It is
// configuration, not logic: the built-in default covers a sample history
// curriculum and deployments can swap in their own table via YAML.
type KeywordTable struct {
	Summaries []SummaryRule     `yaml:"summaries"`
	Topics    []TopicRule       `yaml:"topics"`
	Dates     []DateRule        `yaml:"dates"`
	Figures   []FigureRule      `yaml:"figures"`
	Concepts  []ConceptRule     `yaml:"concepts"`
	Tasks     []TaskTemplate    `yaml:"tasks"`
	Synthesis SynthesisTemplate `yaml:"synthesis"`
}

// Empty reports whether the table carries no rules at all.
func (t KeywordTable) Empty() bool {
	return len(t.Summaries) == 0 && len(t.Topics) == 0 && len(t.Dates) == 0 &&
		len(t.Figures) == 0 && len(t.Concepts) == 0 && len(t.Tasks) == 0
}

func (t KeywordTable) matchTopics(lower string) []Topic {
	var out []Topic
	for _, rule := range t.Topics {
		if rule.matches(lower) {
			out = append(out, rule.Topic)
		}
	}
	return out
}

func (t KeywordTable) matchDates(lower string) []HistoricalDate {
	var out []HistoricalDate
	for _, rule := range t.Dates {
		if rule.matches(lower) {
			out = append(out, rule.Date)
		}
	}
	return out
}

func (t KeywordTable) matchFigures(lower string) []Person {
	var out []Person
	for _, rule := range t.Figures {
		if rule.matches(lower) {
			out = append(out, rule.Figure)
		}
	}
	return out
}

func (t KeywordTable) matchConcepts(lower string) []Concept {
	var out []Concept
	for _, rule := range t.Concepts {
		if rule.matches(lower) {
			out = append(out, rule.Concept)
		}
	}
	return out
}

func (t KeywordTable) taskTemplate(topicName string) (StudyTask, bool) {
	for _, tpl := range t.Tasks {
		if tpl.TopicName == topicName {
			return tpl.Task, true
		}
	}
	return StudyTask{}, false
}

// DefaultKeywordTable returns the built-in sample table (a Mesoamerican
// history unit).
func DefaultKeywordTable() KeywordTable {
	return KeywordTable{
		Summaries: []SummaryRule{
			{
				Rule:    Rule{Keywords: []string{"mesoamerica"}},
				Summary: "This document covers Mesoamerican civilizations and their historical development before European contact in 1521.",
			},
		},
		Topics: []TopicRule{
			{
				Rule: Rule{Keywords: []string{"mesoamerica"}},
				Topic: Topic{
					Name:          "Mesoamerican Civilizations",
					Description:   "Pre-Columbian civilizations of Central America",
					Priority:      PriorityHigh,
					PageReference: "p. 1",
				},
			},
			{
				Rule: Rule{Keywords: []string{"aztec"}},
				Topic: Topic{
					Name:          "Aztec Empire",
					Description:   "The dominant civilization at the time of Spanish contact",
					Priority:      PriorityHigh,
					PageReference: "p. 2",
				},
			},
			{
				Rule: Rule{Keywords: []string{"maya"}},
				Topic: Topic{
					Name:          "Maya Civilization",
					Description:   "Advanced civilization with writing, astronomy, and mathematics",
					Priority:      PriorityHigh,
					PageReference: "p. 3",
				},
			},
			{
				Rule: Rule{Keywords: []string{"olmec"}},
				Topic: Topic{
					Name:          "Olmec Culture",
					Description:   "The 'mother culture' of Mesoamerica",
					Priority:      PriorityMedium,
					PageReference: "p. 4",
				},
			},
		},
		Dates: []DateRule{
			{
				Rule: Rule{Keywords: []string{"1521"}},
				Date: HistoricalDate{
					Date:          "1521",
					Event:         "Spanish conquest of the Aztec Empire",
					Significance:  "End of independent Mesoamerican civilization",
					PageReference: "p. 1",
				},
			},
			{
				Rule: Rule{Keywords: []string{"1200"}},
				Date: HistoricalDate{
					Date:          "c. 1200 BCE",
					Event:         "Rise of Olmec civilization",
					Significance:  "Beginning of complex Mesoamerican societies",
					PageReference: "p. 2",
				},
			},
		},
		Figures: []FigureRule{
			{
				Rule: Rule{Keywords: []string{"moctezuma"}},
				Figure: Person{
					Name:          "Moctezuma II",
					Role:          "Aztec Emperor",
					Significance:  "Ruler during Spanish conquest",
					Timeframe:     "1502-1520",
					PageReference: "p. 3",
				},
			},
			{
				Rule: Rule{Keywords: []string{"cortés", "cortes"}},
				Figure: Person{
					Name:          "Hernán Cortés",
					Role:          "Spanish Conquistador",
					Significance:  "Led conquest of Aztec Empire",
					Timeframe:     "1519-1521",
					PageReference: "p. 4",
				},
			},
		},
		Concepts: []ConceptRule{
			{
				Rule: Rule{Keywords: []string{"tribute"}},
				Concept: Concept{
					Name:            "Tribute System",
					Definition:      "Economic system where conquered peoples provided goods and labor",
					Importance:      "Central to Aztec imperial control",
					RelatedConcepts: []string{"Empire", "Economy"},
					PageReference:   "p. 5",
				},
			},
			{
				Rule: Rule{Keywords: []string{"calendar"}},
				Concept: Concept{
					Name:            "Mesoamerican Calendar",
					Definition:      "Complex system combining solar and ritual calendars",
					Importance:      "Reflects advanced astronomical knowledge",
					RelatedConcepts: []string{"Astronomy", "Religion"},
					PageReference:   "p. 6",
				},
			},
		},
		Tasks: []TaskTemplate{
			{
				TopicName: "Mesoamerican Civilizations",
				Task: StudyTask{
					Title:            "Map the major Mesoamerican civilizations",
					Description:      "Create a geographical and chronological map showing the locations and time periods of major Mesoamerican civilizations",
					TaskType:         TaskUnderstand,
					EstimatedMinutes: 45,
					Priority:         PriorityHigh,
					RelatedTopics:    []string{"Geography", "Chronology"},
				},
			},
			{
				TopicName: "Aztec Empire",
				Task: StudyTask{
					Title:            "Analyze Aztec imperial organization",
					Description:      "Study the political, military, and economic structures that allowed the Aztec Empire to control central Mexico",
					TaskType:         TaskAnalyze,
					EstimatedMinutes: 60,
					Priority:         PriorityHigh,
					RelatedTopics:    []string{"Politics", "Military", "Economics"},
				},
			},
			{
				TopicName: "Maya Civilization",
				Task: StudyTask{
					Title:            "Compare Maya and Aztec achievements",
					Description:      "Examine the different accomplishments of Maya and Aztec civilizations in writing, mathematics, and astronomy",
					TaskType:         TaskCompare,
					EstimatedMinutes: 50,
					Priority:         PriorityMedium,
					RelatedTopics:    []string{"Writing", "Mathematics", "Astronomy"},
				},
			},
		},
		Synthesis: SynthesisTemplate{
			Title:       "Synthesize cross-topic patterns",
			Description: "Identify common themes and unique characteristics across the document's main topics",
		},
	}
}
