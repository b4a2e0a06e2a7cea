package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profilescope/internal/github"
	"profilescope/internal/models"
	"profilescope/internal/services"
)

type fakeAnalyzer struct {
	result *models.AnalysisResult
	err    error
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, handle, token string) (*models.AnalysisResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeAssessor struct {
	assessment *models.Assessment
	err        error
	called     bool
}

func (f *fakeAssessor) Assess(ctx context.Context, result *models.AnalysisResult) (*models.Assessment, error) {
	f.called = true
	if f.err != nil {
		return nil, f.err
	}
	return f.assessment, nil
}

type fakeOpener struct {
	sessionID string
	err       error
}

func (f *fakeOpener) Open(ctx context.Context, profile *models.Profile, assessment *models.Assessment) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.sessionID, nil
}

func analysisFixture() *models.AnalysisResult {
	return &models.AnalysisResult{
		Profile:      &models.Profile{Login: "octocat"},
		Repositories: []*models.Repository{{Name: "alpha"}},
		Stats:        models.ContributionStats{Total: 42, LongestStreak: 7, CurrentStreak: 2},
	}
}

func assessmentFixture() *models.Assessment {
	return &models.Assessment{
		ProfileScore:        72,
		ProfessionalPersona: "Backend Generalist",
		RepoAnalyses:        []models.RepoAssessment{{Name: "alpha", Completeness: models.CompletenessHigh}},
	}
}

func newAnalyzeRouter(analyzer ProfileAnalyzer, assessor Assessor, opener ChatOpener) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewAnalyzeHandler(analyzer, assessor, opener)
	router.POST("/api/analyze", handler.Analyze)
	return router
}

func postAnalyze(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAnalyzeSuccess(t *testing.T) {
	router := newAnalyzeRouter(
		&fakeAnalyzer{result: analysisFixture()},
		&fakeAssessor{assessment: assessmentFixture()},
		&fakeOpener{sessionID: "session-123"},
	)

	w := postAnalyze(router, `{"username": "octocat"}`)

	require.Equal(t, http.StatusOK, w.Code)

	var resp analyzeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "octocat", resp.Profile.Login)
	assert.Equal(t, 42, resp.ContributionStats.Total)
	assert.Equal(t, 72.0, resp.Assessment.ProfileScore)
	assert.Equal(t, "session-123", resp.ChatSessionID)
}

func TestAnalyzeMissingUsername(t *testing.T) {
	router := newAnalyzeRouter(&fakeAnalyzer{}, &fakeAssessor{}, &fakeOpener{})

	w := postAnalyze(router, `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyzeUserNotFound(t *testing.T) {
	router := newAnalyzeRouter(
		&fakeAnalyzer{err: github.ErrNotFound},
		&fakeAssessor{},
		&fakeOpener{},
	)

	w := postAnalyze(router, `{"username": "ghost"}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAnalyzeRateLimited(t *testing.T) {
	router := newAnalyzeRouter(
		&fakeAnalyzer{err: github.ErrRateLimited},
		&fakeAssessor{},
		&fakeOpener{},
	)

	w := postAnalyze(router, `{"username": "octocat"}`)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestAnalyzeEmptyPortfolioSkipsAssessment(t *testing.T) {
	assessor := &fakeAssessor{}
	router := newAnalyzeRouter(
		&fakeAnalyzer{err: services.ErrEmptyPortfolio},
		assessor,
		&fakeOpener{},
	)

	w := postAnalyze(router, `{"username": "octocat"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.False(t, assessor.called)
}

func TestAnalyzeUpstreamError(t *testing.T) {
	router := newAnalyzeRouter(
		&fakeAnalyzer{err: &github.UpstreamError{StatusCode: 500, Status: "500 Internal Server Error"}},
		&fakeAssessor{},
		&fakeOpener{},
	)

	w := postAnalyze(router, `{"username": "octocat"}`)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestAnalyzeAssessmentFailure(t *testing.T) {
	router := newAnalyzeRouter(
		&fakeAnalyzer{result: analysisFixture()},
		&fakeAssessor{err: &services.AssessmentError{Reason: "model returned no content"}},
		&fakeOpener{},
	)

	w := postAnalyze(router, `{"username": "octocat"}`)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestAnalyzeChatOpenFailureDegrades(t *testing.T) {
	router := newAnalyzeRouter(
		&fakeAnalyzer{result: analysisFixture()},
		&fakeAssessor{assessment: assessmentFixture()},
		&fakeOpener{err: errors.New("model unavailable")},
	)

	w := postAnalyze(router, `{"username": "octocat"}`)

	require.Equal(t, http.StatusOK, w.Code)

	var resp analyzeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.ChatSessionID)
	assert.NotNil(t, resp.Assessment)
}
