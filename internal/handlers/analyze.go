package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"profilescope/internal/github"
	"profilescope/internal/models"
	"profilescope/internal/services"
	"profilescope/pkg/logger"
)

// ProfileAnalyzer runs the aggregation pipeline for a handle
type ProfileAnalyzer interface {
	Analyze(ctx context.Context, handle, token string) (*models.AnalysisResult, error)
}

// Assessor requests the structured assessment for an aggregated profile
type Assessor interface {
	Assess(ctx context.Context, result *models.AnalysisResult) (*models.Assessment, error)
}

// ChatOpener creates a follow-up chat session seeded with the assessment
type ChatOpener interface {
	Open(ctx context.Context, profile *models.Profile, assessment *models.Assessment) (string, error)
}

type AnalyzeHandler struct {
	profiles ProfileAnalyzer
	assessor Assessor
	chats    ChatOpener
}

func NewAnalyzeHandler(profiles ProfileAnalyzer, assessor Assessor, chats ChatOpener) *AnalyzeHandler {
	return &AnalyzeHandler{
		profiles: profiles,
		assessor: assessor,
		chats:    chats,
	}
}

type analyzeRequest struct {
	Username    string `json:"username" binding:"required"`
	GitHubToken string `json:"github_token"`
}

type analyzeResponse struct {
	Profile           *models.Profile          `json:"profile"`
	Repositories      []*models.Repository     `json:"repositories"`
	ContributionStats models.ContributionStats `json:"contribution_stats"`
	Assessment        *models.Assessment       `json:"assessment"`
	ChatSessionID     string                   `json:"chat_session_id,omitempty"`
}

// Analyze handles POST /api/analyze
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username is required"})
		return
	}

	ctx := c.Request.Context()

	result, err := h.profiles.Analyze(ctx, req.Username, req.GitHubToken)
	if err != nil {
		respondPipelineError(c, err)
		return
	}

	assessment, err := h.assessor.Assess(ctx, result)
	if err != nil {
		respondPipelineError(c, err)
		return
	}

	// The chat session is independent of the analysis result; losing it
	// degrades the response rather than failing it
	sessionID, err := h.chats.Open(ctx, result.Profile, assessment)
	if err != nil {
		logger.WithError(err).WithField("handle", req.Username).Warn("Failed to open chat session")
		sessionID = ""
	}

	c.JSON(http.StatusOK, analyzeResponse{
		Profile:           result.Profile,
		Repositories:      result.Repositories,
		ContributionStats: result.Stats,
		Assessment:        assessment,
		ChatSessionID:     sessionID,
	})
}

// respondPipelineError maps pipeline failures onto HTTP statuses
func respondPipelineError(c *gin.Context, err error) {
	var upstreamErr *github.UpstreamError
	var assessErr *services.AssessmentError

	switch {
	case errors.Is(err, github.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	case errors.Is(err, github.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": github.ErrRateLimited.Error()})
	case errors.Is(err, services.ErrEmptyPortfolio):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": services.ErrEmptyPortfolio.Error()})
	case errors.As(err, &upstreamErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": upstreamErr.Error()})
	case errors.As(err, &assessErr):
		logger.WithError(err).Error("Assessment failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "assessment failed; please try again"})
	case errors.Is(err, services.ErrMissingAPIKey):
		c.JSON(http.StatusInternalServerError, gin.H{"error": services.ErrMissingAPIKey.Error()})
	default:
		logger.WithError(err).Error("Analysis failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis failed"})
	}
}
