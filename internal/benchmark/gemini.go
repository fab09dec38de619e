package benchmark

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/raysh454/ethicheck/internal/assessor"
	"github.com/raysh454/ethicheck/internal/logging"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.0-flash"

// Generator sends a prompt and returns the model's raw text answer.
type Generator func(ctx context.Context, prompt string) (string, error)

// GeminiAssessor asks a language model for a JSON verdict.
type GeminiAssessor struct {
	generate Generator
	logger   logging.Logger
}

// NewGeminiAssessor builds an assessor backed by the Gemini API.
func NewGeminiAssessor(ctx context.Context, apiKey, model string, logger logging.Logger) (*GeminiAssessor, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: API key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	gen := func(ctx context.Context, prompt string) (string, error) {
		resp, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), &genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			Temperature:      genai.Ptr[float32](0.2),
		})
		if err != nil {
			return "", err
		}
		return resp.Text(), nil
	}
	return NewAIAssessor(gen, logger), nil
}

// NewAIAssessor wraps any Generator.
func NewAIAssessor(gen Generator, logger logging.Logger) *GeminiAssessor {
	return &GeminiAssessor{
		generate: gen,
		logger:   logging.OrNop(logger).With(logging.Component("ai-assessor")),
	}
}

const promptTemplate = `You assess forced labor and supply chain risk for consumer brands.
Brand: %s
Product: %s
Country of origin: %s

Answer with a JSON object only:
{"risk_level": "high" | "moderate" | "low", "reason": "<one or two sentences>", "confidence": <number between 0 and 1>}`

// Prompt renders the question sent to the model.
func Prompt(q assessor.Query) string {
	orUnknown := func(s string) string {
		if strings.TrimSpace(s) == "" {
			return "unknown"
		}
		return s
	}
	return fmt.Sprintf(promptTemplate, q.Brand, orUnknown(q.Product), orUnknown(q.Country))
}

// Assess returns an explicit unknown verdict when the answer cannot be used,
// and an error only when the model could not be reached.
func (g *GeminiAssessor) Assess(ctx context.Context, q assessor.Query) (assessor.RiskAssessment, error) {
	text, err := g.generate(ctx, Prompt(q))
	if err != nil {
		return assessor.RiskAssessment{}, fmt.Errorf("gemini: %w", err)
	}
	a, err := ParseAIAnswer(text, q.Brand)
	if err != nil {
		g.logger.Warn("unusable ai answer", logging.Field{Key: "brand", Value: q.Brand}, logging.Err(err))
	}
	return a, nil
}

type aiAnswer struct {
	RiskLevel  string   `json:"risk_level"`
	Reason     string   `json:"reason"`
	Confidence *float64 `json:"confidence"`
}

// ParseAIAnswer decodes a model answer. A code fence around the JSON is
// tolerated. On error the returned verdict is the unknown AI verdict.
func ParseAIAnswer(text, brand string) (assessor.RiskAssessment, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	var ans aiAnswer
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &ans); err != nil {
		return assessor.UnavailableAI(brand), fmt.Errorf("decode answer: %w", err)
	}
	level, ok := assessor.ParseRiskLevel(ans.RiskLevel)
	if !ok || level == assessor.RiskUnknown {
		return assessor.UnavailableAI(brand), fmt.Errorf("invalid risk level %q", ans.RiskLevel)
	}
	if strings.TrimSpace(ans.Reason) == "" {
		return assessor.UnavailableAI(brand), errors.New("empty reason")
	}

	a := assessor.RiskAssessment{
		Source:     assessor.SourceAI,
		RiskLevel:  level,
		Reason:     strings.TrimSpace(ans.Reason),
		Disclaimer: assessor.AIDisclaimer,
		Brand:      brand,
	}
	if ans.Confidence != nil {
		c := *ans.Confidence
		if c < 0 {
			c = 0
		} else if c > 1 {
			c = 1
		}
		a.Confidence, a.HasConfidence = c, true
	}
	return a, nil
}
