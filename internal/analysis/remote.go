package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/starford/ansuz/internal/apperr"
)

const systemPrompt = "You are an expert academic document analyzer. Analyze the provided document " +
	"and generate structured study materials. Focus on creating actionable study tasks, not just summaries."

const analysisPromptTemplate = `Please analyze this academic document and provide a comprehensive study analysis. Return your response in the following JSON format:

{
  "title": "Document title",
  "summary": "2-3 sentence summary of the main content",
  "mainTopics": [
    {"name": "Topic name", "description": "Brief description", "priority": "high|medium|low", "pageReference": "p. X"}
  ],
  "studyTasks": [
    {"title": "Actionable study task", "description": "What the student should do", "taskType": "memorize|understand|analyze|compare|synthesize|review", "estimatedMinutes": 30, "priority": "high|medium|low", "pageReference": "p. X", "relatedTopics": ["topic1", "topic2"]}
  ],
  "keyDates": [
    {"date": "Date or period", "event": "What happened", "significance": "Why it matters", "pageReference": "p. X"}
  ],
  "importantFigures": [
    {"name": "Person name", "role": "Their role/position", "significance": "Why they're important", "timeframe": "When they lived/were active", "pageReference": "p. X"}
  ],
  "concepts": [
    {"name": "Concept name", "definition": "Clear definition", "importance": "Why it's significant", "relatedConcepts": ["concept1", "concept2"], "pageReference": "p. X"}
  ]
}

Focus on creating actionable study tasks that help students learn and understand the material, not just read it. Each task should be specific and measurable.

Document title: %s

Document content:
%s`

// RemoteConfig configures the LLM-backed backend.
type RemoteConfig struct {
	// APIKeyEnv names the environment variable checked first for the
	// credential; APIKey is the persisted setting checked second.
	APIKeyEnv string
	APIKey    string
	BaseURL   string
	Model     string
	Timeout   time.Duration
}

// Remote is an analysis backend that calls an OpenAI-style chat-completions
// endpoint and extracts a DocumentAnalysis JSON object from the reply.
type Remote struct {
	cfg    RemoteConfig
	client *http.Client
}

// NewRemote creates a remote backend. The backend is unavailable (not an
// error) when no credential can be resolved.
func NewRemote(cfg RemoteConfig) *Remote {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Remote{
		cfg:    cfg,
		client: &http.Client{},
	}
}

// Name identifies the backend in logs.
func (r *Remote) Name() string { return "remote:" + r.cfg.Model }

// Available reports whether a credential is configured.
func (r *Remote) Available() bool { return r.apiKey() != "" }

// apiKey resolves the credential: environment variable first, then the
// persisted setting. First non-empty value wins.
func (r *Remote) apiKey() string {
	if r.cfg.APIKeyEnv != "" {
		if key := os.Getenv(r.cfg.APIKeyEnv); key != "" {
			return key
		}
	}
	return r.cfg.APIKey
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Analyze sends one structured prompt with the full document text and parses
// the JSON object embedded in the reply. The request is cancellable through
// ctx and bounded by the configured timeout.
func (r *Remote) Analyze(ctx context.Context, content, title string) (*DocumentAnalysis, error) {
	promptTitle := title
	if promptTitle == "" {
		promptTitle = "Unknown"
	}

	reqBody := chatRequest{
		Model: r.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf(analysisPromptTemplate, promptTitle, content)},
		},
		Temperature: 0.3,
		MaxTokens:   4000,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", apperr.ErrBackend, err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", apperr.ErrBackend, err)
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey())
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrBackend, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", apperr.ErrBackend, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", apperr.ErrBackend, resp.StatusCode, truncate(string(body), 200))
	}

	var chat chatResponse
	if err := json.Unmarshal(body, &chat); err != nil {
		return nil, fmt.Errorf("%w: decode envelope: %v", apperr.ErrParsing, err)
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("%w: response has no choices", apperr.ErrParsing)
	}

	return parseAnalysisReply(chat.Choices[0].Message.Content, title)
}

// parseAnalysisReply extracts the JSON object from the model's free-text
// reply and decodes it. Missing or malformed JSON is a hard failure for this
// backend.
func parseAnalysisReply(reply, originalTitle string) (*DocumentAnalysis, error) {
	raw, ok := extractJSON(reply)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object found in response", apperr.ErrParsing)
	}

	var out DocumentAnalysis
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("%w: decode analysis: %v", apperr.ErrParsing, err)
	}

	if out.Title == "" {
		if originalTitle != "" {
			out.Title = originalTitle
		} else {
			out.Title = "Document Analysis"
		}
	}
	return &out, nil
}

// extractJSON returns the substring between the first '{' and the last '}',
// tolerating surrounding prose and markdown fences.
func extractJSON(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
