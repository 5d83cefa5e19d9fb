// Package chatbot forwards free-text questions to an OpenAI-compatible
// text-generation service. It keeps no conversation state; each query is an
// independent request/response exchange.
package chatbot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"kinnected/backend/pkg/apperrors"
	"kinnected/backend/pkg/logger"
)

const advisorPrompt = `You are a family relationship advisor for a family tree application.
Provide advice about family relationships, connections, and family dynamics.
Keep responses concise, practical, and focused on maintaining healthy family relationships.
Avoid any harmful or inappropriate advice.`

const suggestionsPromptFormat = `You are a family relationship advisor for a family tree application.
Provide 3-5 specific suggestions for maintaining and improving a %s relationship.
Additional context: %s
Keep suggestions practical, positive, and focused on strengthening family bonds.
Format as bullet points.`

// greetingReply is returned for recognized greetings without calling the model
const greetingReply = "Hello! I'm your family assistant. Ask me anything about family relationships, connections, or keeping your tree healthy."

// Greeting phrases are matched case-insensitively after trimming
var greetings = map[string]struct{}{
	"hi":           {},
	"hello":        {},
	"hey":          {},
	"hi there":     {},
	"good morning": {},
	"good evening": {},
}

const maxAttempts = 3

// Gateway relays chatbot questions to the text-generation service
type Gateway struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// New creates a gateway against an OpenAI-compatible endpoint
func New(baseURL, apiKey, model string) *Gateway {
	// The client rejects an empty key before sending anything
	if apiKey == "" {
		apiKey = "dummy-key"
	}

	config := openai.DefaultConfig(apiKey)
	config.BaseURL = strings.TrimSuffix(baseURL, "/") + "/v1"

	return &Gateway{
		client: openai.NewClientWithConfig(config),
		model:  model,
		logger: logger.Named("chatbot"),
	}
}

// Query answers a free-text question. Greetings are short-circuited with a
// canned reply; everything else is forwarded under the advisor system prompt
// and the model's text is relayed verbatim.
func (g *Gateway) Query(ctx context.Context, query string) (string, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return "", apperrors.Validation("Query is required")
	}

	if _, ok := greetings[strings.ToLower(trimmed)]; ok {
		return greetingReply, nil
	}

	return g.generate(ctx, advisorPrompt, trimmed)
}

// Suggestions produces improvement suggestions for one relation type
func (g *Gateway) Suggestions(ctx context.Context, relation, extra string) (string, error) {
	if strings.TrimSpace(relation) == "" {
		return "", apperrors.Validation("Relation type is required")
	}
	if strings.TrimSpace(extra) == "" {
		extra = "General advice"
	}

	prompt := fmt.Sprintf(suggestionsPromptFormat, relation, extra)
	return g.generate(ctx, prompt, fmt.Sprintf("Suggestions for my %s relationship", relation))
}

func (g *Gateway) generate(ctx context.Context, systemPrompt, userMsg string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMsg},
		},
		Temperature: 0.7,
	}

	var resp openai.ChatCompletionResponse
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * time.Second
			g.logger.Warn("Retrying AI request",
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", backoff),
			)
			select {
			case <-ctx.Done():
				return "", apperrors.Server("AI request cancelled", ctx.Err())
			case <-time.After(backoff):
			}
		}

		resp, err = g.client.CreateChatCompletion(ctx, req)
		if err == nil {
			break
		}

		g.logger.Error("AI request failed",
			zap.Error(err),
			zap.Int("attempt", attempt+1),
			zap.String("model", g.model),
		)
	}
	if err != nil {
		return "", apperrors.Server("AI service is unavailable", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", apperrors.Server("AI service returned no response", nil)
	}

	g.logger.Debug("AI response generated", zap.String("model", g.model))
	return resp.Choices[0].Message.Content, nil
}
