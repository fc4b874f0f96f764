package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// WorkPackageSuggester breaks a task description down into work packages.
type WorkPackageSuggester interface {
	SuggestWorkPackages(ctx context.Context, input SuggestionInput) ([]SuggestedWorkPackage, error)
}

type AIService struct {
	client *openai.Client
	model  string
}

// SuggestionInput describes the task to break down.
type SuggestionInput struct {
	Title       string
	Description string
	Deadline    *time.Time
}

type SuggestedWorkPackage struct {
	Name       string     `json:"name"`
	Percentage int        `json:"percentage"`
	Deadline   *time.Time `json:"deadline"`
}

func NewAIService(apiKey string) *AIService {
	return &AIService{
		client: openai.NewClient(apiKey),
		model:  openai.GPT4o,
	}
}

// SuggestWorkPackages asks the chat model for a JSON list of work packages
func (s *AIService) SuggestWorkPackages(ctx context.Context, input SuggestionInput) ([]SuggestedWorkPackage, error) {
	if s.client == nil {
		return nil, fmt.Errorf("OpenAI client not initialized")
	}

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: suggestionPrompt(input, time.Now()),
				},
			},
			Temperature: 0.3,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	return parseSuggestions(resp.Choices[0].Message.Content)
}

func suggestionPrompt(input SuggestionInput, now time.Time) string {
	deadline := "none"
	if input.Deadline != nil {
		deadline = input.Deadline.Format(time.RFC3339)
	}

	return fmt.Sprintf(`You are a project planning assistant. Split the task below into concrete work packages.

Current time: %s

Task title: %s
Task description:
%s
Task deadline: %s

Return a JSON array in exactly this shape:
[
  {
    "name": "short work package name",
    "percentage": 25,
    "deadline": "ISO8601 timestamp, e.g. 2025-10-28T23:59:59Z, or null"
  }
]

Rules:
- percentage is the share of the whole task, an integer between 0 and 100
- no deadline may be later than the task deadline
- return [] when the task cannot be split
- return JSON only, with no explanation`, now.Format(time.RFC3339), input.Title, input.Description, deadline)
}

// parseSuggestions accepts the model output with or without a markdown fence.
func parseSuggestions(content string) ([]SuggestedWorkPackage, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var packages []SuggestedWorkPackage
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &packages); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}
	return packages, nil
}
