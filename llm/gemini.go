package llm

import (
	"context"
	"fmt"
	"strings"

	"contratorealidad-backend/logger"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// NewGeminiClient opens a Gemini client with an API key
func NewGeminiClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return client, nil
}

// GeminiGenerator generates text with a Gemini model
type GeminiGenerator struct {
	client *genai.Client
	model  string
	log    *logger.Logger
}

func NewGeminiGenerator(client *genai.Client, model string, log *logger.Logger) *GeminiGenerator {
	return &GeminiGenerator{client: client, model: model, log: log.With("service", "GeminiGenerator")}
}

func (g *GeminiGenerator) Generate(ctx context.Context, req Request) (string, error) {
	model := g.client.GenerativeModel(g.model)
	if req.System != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(req.System))
	}
	model.SetTemperature(req.Temperature)
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
		return "", fmt.Errorf("%w: prompt blocked: %s", ErrGeneration, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates", ErrGeneration)
	}

	var b strings.Builder
	for i, cand := range resp.Candidates {
		if cand.FinishReason != genai.FinishReasonUnspecified && cand.FinishReason != genai.FinishReasonStop {
			g.log.Warn("candidate finished early", "candidate", i, "reason", cand.FinishReason.String())
		}
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
	}

	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", fmt.Errorf("%w: empty content", ErrGeneration)
	}
	return out, nil
}

// GeminiEmbedder embeds text with a Gemini embedding model
type GeminiEmbedder struct {
	client *genai.Client
	model  string
}

func NewGeminiEmbedder(client *genai.Client, model string) *GeminiEmbedder {
	return &GeminiEmbedder{client: client, model: model}
}

func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	res, err := e.client.EmbeddingModel(e.model).EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}
	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, fmt.Errorf("%w: empty embedding", ErrEmbedding)
	}
	return res.Embedding.Values, nil
}
