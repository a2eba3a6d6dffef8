package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/lshigami/ToeicGenius/config"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// GeminiLLMService generates TOEIC-style example sentences for
// vocabulary flashcards.
type GeminiLLMService interface {
	GenerateExampleSentence(ctx context.Context, word, meaning string) (string, error)
}

type geminiLLMService struct {
	client *genai.GenerativeModel
	cfg    *config.Config
}

func NewGeminiLLMService(cfg *config.Config) (GeminiLLMService, error) {
	if cfg.GeminiApiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. GeminiLLMService will be non-functional.")
		return &geminiLLMService{cfg: cfg, client: nil}, nil
	}
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiApiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	model := client.GenerativeModel("gemini-1.5-flash")
	return &geminiLLMService{client: model, cfg: cfg}, nil
}

func (s *geminiLLMService) GenerateExampleSentence(ctx context.Context, word, meaning string) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("gemini client not initialized")
	}

	var prompt strings.Builder
	prompt.WriteString("You are an English teacher preparing TOEIC study material.\n")
	prompt.WriteString(fmt.Sprintf("Write ONE natural example sentence in a business or everyday TOEIC context using the word \"%s\"", word))
	if meaning != "" {
		prompt.WriteString(fmt.Sprintf(" (meaning: %s)", meaning))
	}
	prompt.WriteString(".\nReturn only the sentence, no explanation and no quotation marks.")

	resp, err := s.client.GenerateContent(ctx, genai.Text(prompt.String()))
	if err != nil {
		log.Error().Err(err).Str("word", word).Msg("Gemini API error generating example sentence")
		return "", fmt.Errorf("gemini API error: %w", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no content")
	}
	fullText := ""
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			fullText += string(txt)
		}
	}
	sentence := strings.TrimSpace(strings.Trim(strings.TrimSpace(fullText), `"`))
	if sentence == "" {
		return "", fmt.Errorf("gemini returned no text content")
	}
	return sentence, nil
}
