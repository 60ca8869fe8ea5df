package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"quizforge/config"
	"quizforge/models"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

var geminiClient *genai.Client

// InitQuizGenService sets up the Gemini client used for drafting quiz
// questions. Generation stays disabled when no API key is configured.
func InitQuizGenService(cfg *config.Config) {
	if cfg.Gemini.ApiKey == "" {
		log.Println("Gemini API key not configured, quiz generation disabled")
		return
	}
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.Gemini.ApiKey))
	if err != nil {
		log.Printf("Failed to initialize Gemini client: %v", err)
		return
	}
	geminiClient = client
}

// GenerateQuizQuestions drafts count multiple-choice questions about topic
// using the Gemini API. Malformed candidates are dropped rather than failing
// the whole batch.
func GenerateQuizQuestions(ctx context.Context, topic, category string, count int) ([]models.Question, error) {
	if geminiClient == nil {
		return nil, errors.New("Gemini client not initialized")
	}
	if count < 1 || count > 10 {
		return nil, errors.New("question count must be between 1 and 10")
	}

	prompt := fmt.Sprintf(
		`Generate %d multiple-choice quiz questions about "%s" in the category "%s". Respond with a JSON array only, no prose. Each element must have:
- "question": the question text
- "options": exactly 4 answer strings
- "correctAnswer": the zero-based index of the correct option
Questions should be factual and unambiguous, with plausible distractors.`,
		count, topic, category,
	)

	model := geminiClient.GenerativeModel("gemini-1.5-flash")
	model.SafetySettings = []*genai.SafetySetting{
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockLowAndAbove},
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockLowAndAbove},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockLowAndAbove},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockLowAndAbove},
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil || len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("failed to generate questions: %v", err)
	}

	var raw string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			raw = string(text)
			break
		}
	}

	var drafts []struct {
		Question      string   `json:"question"`
		Options       []string `json:"options"`
		CorrectAnswer int      `json:"correctAnswer"`
	}
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &drafts); err != nil {
		return nil, fmt.Errorf("failed to parse generated questions: %w", err)
	}

	var questions []models.Question
	for _, d := range drafts {
		if strings.TrimSpace(d.Question) == "" || len(d.Options) != 4 {
			continue
		}
		if d.CorrectAnswer < 0 || d.CorrectAnswer >= len(d.Options) {
			continue
		}
		questions = append(questions, models.Question{
			ID:            uuid.NewString(),
			Question:      strings.TrimSpace(d.Question),
			Options:       d.Options,
			CorrectAnswer: d.CorrectAnswer,
			TimeLimit:     30,
		})
	}
	if len(questions) == 0 {
		return nil, errors.New("model returned no usable questions")
	}
	return questions, nil
}

// stripCodeFences removes markdown fences the model sometimes wraps JSON in.
func stripCodeFences(text string) string {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```JSON")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}
