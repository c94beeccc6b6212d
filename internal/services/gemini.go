package services

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/Barkat-Ullah/seed-lift-backend/internal/config"
)

const geminiModel = "gemini-2.0-flash"

// GeminiService interroge Gemini pour l'assistant de rédaction
type GeminiService struct {
	client *genai.Client
	model  string
}

func NewGeminiService(ctx context.Context, cfg *config.Config) (*GeminiService, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("gemini configuration is missing")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.GeminiAPIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiService{client: client, model: geminiModel}, nil
}

// AskResult porte la réponse du modèle et ses métadonnées d'usage
type AskResult struct {
	Response     string `json:"response"`
	PromptTokens int32  `json:"promptTokens"`
	Candidates   int    `json:"candidates"`
}

// Ask envoie le prompt au modèle et retourne le texte généré
func (s *GeminiService) Ask(ctx context.Context, prompt string) (*AskResult, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	result, err := s.client.Models.GenerateContent(ctx, s.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	out := &AskResult{
		Response:   result.Text(),
		Candidates: len(result.Candidates),
	}
	if result.UsageMetadata != nil {
		out.PromptTokens = result.UsageMetadata.PromptTokenCount
	}
	return out, nil
}

// Model retourne le nom du modèle utilisé, il entre dans la clé de cache
func (s *GeminiService) Model() string {
	return s.model
}
