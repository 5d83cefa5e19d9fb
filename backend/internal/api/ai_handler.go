package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ChatService is the slice of the chatbot gateway the AI endpoints use
type ChatService interface {
	Query(ctx context.Context, query string) (string, error)
	Suggestions(ctx context.Context, relation, extra string) (string, error)
}

// AIHandler serves the assistant endpoints
type AIHandler struct {
	svc ChatService
}

// NewAIHandler creates an AI handler
func NewAIHandler(svc ChatService) *AIHandler {
	return &AIHandler{svc: svc}
}

type queryRequest struct {
	Query string `json:"query"`
}

// Query handles POST /api/ai/query
func (h *AIHandler) Query(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	answer, err := h.svc.Query(c.Request.Context(), req.Query)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{
		"response": answer,
	})
}

type suggestionsRequest struct {
	Relation string `json:"relation"`
	Context  string `json:"context"`
}

// Suggestions handles POST /api/ai/suggestions
func (h *AIHandler) Suggestions(c *gin.Context) {
	var req suggestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	suggestions, err := h.svc.Suggestions(c.Request.Context(), req.Relation, req.Context)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{
		"suggestions": suggestions,
	})
}
