package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/packwise/packwise-backend/config"
	"github.com/packwise/packwise-backend/logger"
	"google.golang.org/genai"
)

// TextGenerator produces a model completion for a system and user prompt.
type TextGenerator interface {
	Generate(ctx context.Context, systemPrompt, prompt string) (string, error)
	ModelName() string
}

// GeminiClient is a TextGenerator backed by the Gemini API.
type GeminiClient struct {
	client      *genai.Client
	model       string
	temperature float32
}

func NewGeminiClient(ctx context.Context, cfg config.LLMConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("GEMINI_API_KEY is not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	logger.GetLogger().Infow("Initialized language model client",
		"model", cfg.Model,
		"apiKey", logger.MaskSensitiveString(cfg.APIKey, 4, 0))

	return &GeminiClient{
		client:      client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}, nil
}

func (g *GeminiClient) ModelName() string {
	return g.model
}

func (g *GeminiClient) Generate(ctx context.Context, systemPrompt, prompt string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(g.temperature),
		ResponseMIMEType: "application/json",
	}
	if systemPrompt != "" {
		cfg.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", err
	}
	return result.Text(), nil
}
