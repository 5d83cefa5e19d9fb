package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"kinnected/backend/internal/family"
	"kinnected/backend/internal/graph"
)

// FamilyService is the slice of the family service the connection endpoints use
type FamilyService interface {
	AddOrUpdate(ctx context.Context, ownerID string, input *family.AddRelationInput) (*graph.Relation, bool, error)
	Relations(ctx context.Context, viewerID, subjectID string) ([]*graph.RelationView, error)
	PendingRequests(ctx context.Context, userID string) ([]*graph.Relation, error)
	Accept(ctx context.Context, callerID, requestID string) (*graph.Relation, error)
	Reject(ctx context.Context, callerID, requestID string) error
}

// ConnectionHandler serves relation creation, listings, and the
// connection-request workflow
type ConnectionHandler struct {
	svc FamilyService
}

// NewConnectionHandler creates a connection handler
func NewConnectionHandler(svc FamilyService) *ConnectionHandler {
	return &ConnectionHandler{svc: svc}
}

// Create handles POST /api/connections. A new relation answers 201; a
// resubmitted placeholder updates the existing record and answers 200.
func (h *ConnectionHandler) Create(c *gin.Context) {
	var req family.AddRelationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	input, err := family.ParseAddRelation(req)
	if err != nil {
		respondError(c, err)
		return
	}

	rel, created, err := h.svc.AddOrUpdate(c.Request.Context(), CurrentAccount(c).ID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respond(c, status, gin.H{
		"relation": rel,
	})
}

// Relations handles GET /api/connections/relations and
// GET /api/connections/relations/:userId, listing the accepted relations of
// the caller or of another account
func (h *ConnectionHandler) Relations(c *gin.Context) {
	views, err := h.svc.Relations(c.Request.Context(), CurrentAccount(c).ID, c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{
		"relations": views,
	})
}

// Pending handles GET /api/connections/pending
func (h *ConnectionHandler) Pending(c *gin.Context) {
	requests, err := h.svc.PendingRequests(c.Request.Context(), CurrentAccount(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{
		"requests": requests,
	})
}

// Accept handles PATCH /api/connections/accept/:requestId
func (h *ConnectionHandler) Accept(c *gin.Context) {
	rel, err := h.svc.Accept(c.Request.Context(), CurrentAccount(c).ID, c.Param("requestId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{
		"relation": rel,
	})
}

// Reject handles PATCH /api/connections/reject/:requestId
func (h *ConnectionHandler) Reject(c *gin.Context) {
	if err := h.svc.Reject(c.Request.Context(), CurrentAccount(c).ID, c.Param("requestId")); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{
		"message": "Connection request rejected",
	})
}
