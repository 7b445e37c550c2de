package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"

	"github.com/parikshasarathi/sarathi/internal/exam"
	"github.com/parikshasarathi/sarathi/internal/llm/prompts"
	"github.com/parikshasarathi/sarathi/internal/model"
)

// FallbackID identifies the placeholder question returned when generation fails.
const FallbackID = "fallback-1"

const temperature = 0.4

var errEmptyResponse = errors.New("empty response from LLM")

// Client wraps an OpenAI-compatible API client and implements exam.Generator.
type Client struct {
	api     *openai.Client
	model   string
	timeout time.Duration
	newID   func() string
}

var _ exam.Generator = (*Client)(nil)

// New creates a new LLM client. A positive timeout bounds each generation call.
func New(baseURL, apiKey, modelName string, timeout time.Duration) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Client{
		api:     openai.NewClientWithConfig(config),
		model:   modelName,
		timeout: timeout,
		newID:   func() string { return "ai-" + uuid.NewString() },
	}
}

// Ping checks that the API is reachable by listing models.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.api.ListModels(ctx); err != nil {
		return fmt.Errorf("LLM ping: %w", err)
	}
	return nil
}

// Generate asks the LLM for req.Count questions. Failures never escape: any
// API, parse or schema error yields the single fallback question.
func (c *Client) Generate(ctx context.Context, req exam.GenerateRequest) []model.Question {
	qs, err := c.generate(ctx, req)
	if err != nil {
		slog.Warn("question generation failed, using fallback",
			"class", req.ClassLevel, "subject", req.Subject, "count", req.Count, "error", err)
		return []model.Question{Fallback(req.ClassLevel, req.Subject)}
	}
	slog.Debug("questions generated", "class", req.ClassLevel, "subject", req.Subject,
		"requested", req.Count, "got", len(qs))
	return qs
}

func (c *Client) generate(ctx context.Context, req exam.GenerateRequest) ([]model.Question, error) {
	if err := prompts.Load(nil); err != nil {
		return nil, err
	}
	system, err := prompts.System()
	if err != nil {
		return nil, err
	}
	count := max(req.Count, 1)
	user, err := prompts.BuildGenerate(prompts.GenerateData{
		Subject:    req.Subject,
		ClassLevel: req.ClassLevel,
		Count:      count,
		Difficulty: req.Difficulty,
		Language:   model.IsLanguageSubject(req.Subject),
	})
	if err != nil {
		return nil, fmt.Errorf("build prompt: %w", err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM API call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("LLM returned no choices")
	}

	raw := resp.Choices[0].Message.Content
	slog.Debug("LLM response", "raw", raw)

	qs, err := parseQuestions(raw)
	if err != nil {
		return nil, err
	}
	if len(qs) > count {
		qs = qs[:count]
	}
	assignIDs(qs, c.newID)
	return qs, nil
}

// parseQuestions accepts a bare JSON array or an object with a "questions"
// array, optionally wrapped in a markdown code fence. Every item must pass
// model.ValidateGeneratedQuestion.
func parseQuestions(raw string) ([]model.Question, error) {
	body := stripFence(raw)
	if body == "" {
		return nil, errEmptyResponse
	}

	var items []model.GeneratedQuestion
	if strings.HasPrefix(body, "[") {
		if err := json.Unmarshal([]byte(body), &items); err != nil {
			return nil, fmt.Errorf("parse LLM response: %w", err)
		}
	} else {
		var wrapped struct {
			Questions []model.GeneratedQuestion `json:"questions"`
		}
		if err := json.Unmarshal([]byte(body), &wrapped); err != nil {
			return nil, fmt.Errorf("parse LLM response: %w", err)
		}
		items = wrapped.Questions
	}
	if len(items) == 0 {
		return nil, errEmptyResponse
	}

	qs := make([]model.Question, len(items))
	for i, item := range items {
		if err := model.ValidateGeneratedQuestion(item); err != nil {
			return nil, fmt.Errorf("question %d: %w", i, err)
		}
		qs[i] = item.Question()
	}
	return qs, nil
}

func stripFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// assignIDs replaces blank or repeated ids so ids are unique within the batch.
func assignIDs(qs []model.Question, newID func() string) {
	seen := make(map[string]bool, len(qs))
	for i := range qs {
		id := strings.TrimSpace(qs[i].ID)
		if id == "" || seen[id] || id == FallbackID {
			id = newID()
		}
		seen[id] = true
		qs[i].ID = id
	}
}

// Fallback is the placeholder question shown when generation fails.
func Fallback(classLevel, subject string) model.Question {
	return model.Question{
		ID:            FallbackID,
		QuestionText:  fmt.Sprintf("सर्वर त्रुटि के कारण कक्षा %s %s के प्रश्न लोड नहीं हो सके। कृपया फिर से प्रयास करें।", classLevel, subject),
		Options:       []string{"विकल्प 1", "विकल्प 2", "विकल्प 3", "विकल्प 4"},
		CorrectAnswer: 0,
		Explanation:   "यह एक अस्थाई त्रुटि है।",
	}
}
