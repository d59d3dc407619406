package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/yukikurage/hr-task-review-api/internal/models"
)

// TaskDrafter turns free text into task drafts.
type TaskDrafter interface {
	DraftTasksFromText(ctx context.Context, text string, now time.Time) ([]TaskDraft, error)
}

type AIService struct {
	client *openai.Client
	model  string
}

// TaskDraft is a suggested task. Drafts are never persisted; the caller
// creates tasks from the ones they keep.
type TaskDraft struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Objectives  string              `json:"objectives"`
	Priority    models.TaskPriority `json:"priority"`
	DueAt       *time.Time          `json:"due_at"`
}

func NewAIService(apiKey string) *AIService {
	return &AIService{
		client: openai.NewClient(apiKey),
		model:  openai.GPT4o,
	}
}

const draftPrompt = `You are an HR operations assistant. Extract concrete, assignable work items from the text below.

Current time: %s

Text:
%s

Return a JSON array of tasks in exactly this shape:
[
  {
    "title": "short imperative title",
    "description": "what needs to be done",
    "objectives": "how success is measured",
    "priority": "LOW | MEDIUM | HIGH",
    "due_at": "deadline in ISO8601, e.g. 2025-10-28T23:59:59Z, or null when none is stated"
  }
]

Rules:
- Return [] when the text contains no tasks
- Resolve relative deadlines ("tomorrow", "next week") against the current time
- Return JSON only, with no surrounding prose`

// DraftTasksFromText asks the model for task drafts
func (s *AIService) DraftTasksFromText(ctx context.Context, text string, now time.Time) ([]TaskDraft, error) {
	if s.client == nil {
		return nil, fmt.Errorf("OpenAI client not initialized")
	}

	prompt := fmt.Sprintf(draftPrompt, now.Format(time.RFC3339), text)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
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

	return parseDrafts(resp.Choices[0].Message.Content)
}

// parseDrafts tolerates a fenced code block around the JSON payload.
func parseDrafts(content string) ([]TaskDraft, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var drafts []TaskDraft
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &drafts); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	return drafts, nil
}
