package ner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// entityPrompt asks the model for strict JSON so the response can be parsed
// without a repair pass.
const entityPrompt = `You are analyzing the text of an invoice. Identify named entities:
organizations, people, locations, and dates.

Return ONLY a valid JSON array in this exact format:
[{"text": "...", "label": "org|person|location|date", "start": 0, "end": 0, "score": 0.0}]

Important:
- "start" and "end" are character offsets into the supplied text
- "score" is your confidence between 0 and 1
- Do not include any text before or after the JSON
- Do not use markdown code blocks

Text:
`

// Gemini implements Recognizer using Google Gemini.
type Gemini struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	timeout time.Duration
}

// NewGemini creates a Gemini-backed entity recognizer.
func NewGemini(ctx context.Context, apiKey, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &Gemini{
		client:  client,
		model:   client.GenerativeModel(modelName),
		timeout: 30 * time.Second,
	}, nil
}

// Recognize extracts labeled entities from text.
func (g *Gemini) Recognize(ctx context.Context, text string) ([]Entity, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.model.GenerateContent(ctx, genai.Text(entityPrompt+text))
	if err != nil {
		return nil, fmt.Errorf("generating content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no response from gemini")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}

	// Strip markdown fences if the model added them anyway.
	payload := strings.TrimSpace(b.String())
	payload = strings.TrimPrefix(payload, "```json")
	payload = strings.TrimPrefix(payload, "```")
	payload = strings.TrimSuffix(payload, "```")
	payload = strings.TrimSpace(payload)

	var entities []Entity
	if err := json.Unmarshal([]byte(payload), &entities); err != nil {
		return nil, fmt.Errorf("parsing entity response: %w", err)
	}
	return entities, nil
}

// Close closes the Gemini client.
func (g *Gemini) Close() error {
	return g.client.Close()
}
