package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

type AIService struct {
	client *openai.Client
}

// GeneratedUserStory is a draft suggested from free text. It is never persisted
// by the AI service itself.
type GeneratedUserStory struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	StoryPoints int    `json:"story_points"`
}

func NewAIService(apiKey string) *AIService {
	return &AIService{
		client: openai.NewClient(apiKey),
	}
}

// GenerateUserStoriesFromText asks the model to split text into user stories
func (s *AIService) GenerateUserStoriesFromText(ctx context.Context, text string) ([]GeneratedUserStory, error) {
	if s.client == nil {
		return nil, fmt.Errorf("OpenAI client not initialized")
	}

	prompt := fmt.Sprintf(`You are a Scrum product owner assistant. Turn the following notes into user stories.

Notes:
%s

Return a JSON array of user stories in this format:
[
  {
    "title": "As a <role>, I want <goal> so that <benefit>",
    "description": "Acceptance criteria and details",
    "priority": "Low | Medium | High",
    "story_points": 3
  }
]

Rules:
- Return an empty array [] if the notes contain no work items
- story_points must be a non-negative integer, preferably a Fibonacci number
- Return JSON only, without any explanation`, text)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
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

	content := resp.Choices[0].Message.Content

	var stories []GeneratedUserStory
	if err := json.Unmarshal([]byte(content), &stories); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	return stories, nil
}
