package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"

	"profilescope/internal/models"
)

// ErrMissingAPIKey indicates the model credential is not configured
var ErrMissingAPIKey = errors.New("model API key is not configured")

// AssessmentError indicates the model call failed or returned content that
// does not match the expected structured shape
type AssessmentError struct {
	Reason string
	Err    error
}

func (e *AssessmentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("assessment failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("assessment failed: %s", e.Reason)
}

func (e *AssessmentError) Unwrap() error {
	return e.Err
}

const (
	// Low temperature biases toward deterministic, consistent scoring
	assessmentTemperature = 0.2
	// maxAssessedRepos caps how many repositories go into the prompt
	maxAssessedRepos = 6
	// readmeExcerptLimit caps the README excerpt sent to the model
	readmeExcerptLimit = 1500
	// noReadmeSentinel stands in for repositories without a fetched README
	noReadmeSentinel = "no readme content available"
)

const assessmentInstruction = `You are a senior engineering manager reviewing a developer's public GitHub profile for a hiring screen.
Score the overall profile from 0 to 100 using these bands: 0-39 Beginner, 40-59 Developing, 60-79 Proficient, 80-100 Advanced.
Judge only what the data shows: repository quality, documentation, activity consistency, breadth and depth of languages and topics.
Be specific and concrete. Never give generic advice that could apply to any profile; every statement must reference something in the supplied data.
Assess each supplied repository individually, rating its completeness as Low, Medium or High.
Return only the requested JSON object.`

// NewGenAIClient creates the shared Gemini client used by the assessment
// and chat services
func NewGenAIClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create model client: %w", err)
	}

	return client, nil
}

// AssessmentService requests a structured qualitative assessment of an
// aggregated profile from the model
type AssessmentService struct {
	client *genai.Client
	model  string
}

func NewAssessmentService(client *genai.Client, model string) *AssessmentService {
	return &AssessmentService{
		client: client,
		model:  model,
	}
}

// Assess sends the aggregated profile to the model and parses the response
// strictly against the assessment schema. Any structural mismatch is a hard
// error, never a partially-populated assessment.
func (s *AssessmentService) Assess(ctx context.Context, result *models.AnalysisResult) (*models.Assessment, error) {
	payload, err := buildAssessmentPayload(result)
	if err != nil {
		return nil, &AssessmentError{Reason: "failed to serialize profile payload", Err: err}
	}

	temperature := float32(assessmentTemperature)
	config := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		ResponseMIMEType: "application/json",
		ResponseSchema:   assessmentSchema(),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: assessmentInstruction}},
		},
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(payload), config)
	if err != nil {
		return nil, &AssessmentError{Reason: "model call failed", Err: err}
	}

	text := resp.Text()
	if text == "" {
		return nil, &AssessmentError{Reason: "model returned no content"}
	}

	return parseAssessment(text)
}

// assessedRepo is the compact repository projection sent to the model
type assessedRepo struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Language    string   `json:"language,omitempty"`
	Stars       int      `json:"stars"`
	UpdatedAt   string   `json:"updated_at,omitempty"`
	Homepage    string   `json:"homepage,omitempty"`
	Topics      []string `json:"topics,omitempty"`
	Readme      string   `json:"readme"`
}

type assessmentPayload struct {
	Profile           *models.Profile          `json:"profile"`
	ContributionStats models.ContributionStats `json:"contribution_stats"`
	Repositories      []assessedRepo           `json:"repositories"`
}

func buildAssessmentPayload(result *models.AnalysisResult) (string, error) {
	repos := result.Repositories
	if len(repos) > maxAssessedRepos {
		repos = repos[:maxAssessedRepos]
	}

	payload := assessmentPayload{
		Profile:           result.Profile,
		ContributionStats: result.Stats,
		Repositories:      make([]assessedRepo, 0, len(repos)),
	}

	for _, repo := range repos {
		entry := assessedRepo{
			Name:   repo.Name,
			Stars:  repo.Stars,
			Topics: repo.Topics,
			Readme: noReadmeSentinel,
		}
		if repo.Description != nil {
			entry.Description = *repo.Description
		}
		if repo.Language != nil {
			entry.Language = *repo.Language
		}
		if repo.Homepage != nil {
			entry.Homepage = *repo.Homepage
		}
		if repo.UpdatedAt != nil {
			entry.UpdatedAt = repo.UpdatedAt.Format(time.RFC3339)
		}
		if repo.Readme != nil {
			entry.Readme = truncateRunes(*repo.Readme, readmeExcerptLimit)
		}
		payload.Repositories = append(payload.Repositories, entry)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// parseAssessment validates the model's response against the expected shape
func parseAssessment(text string) (*models.Assessment, error) {
	var assessment models.Assessment
	if err := json.Unmarshal([]byte(text), &assessment); err != nil {
		return nil, &AssessmentError{Reason: "model response is not valid JSON", Err: err}
	}

	if assessment.ProfessionalPersona == "" {
		return nil, &AssessmentError{Reason: "response is missing professionalPersona"}
	}
	if assessment.ProfileSummary == "" {
		return nil, &AssessmentError{Reason: "response is missing profileSummary"}
	}
	if assessment.OverallImpression == "" {
		return nil, &AssessmentError{Reason: "response is missing overallImpression"}
	}
	if assessment.CareerAdvice == "" {
		return nil, &AssessmentError{Reason: "response is missing careerAdvice"}
	}
	if assessment.TechnicalSkills == nil {
		return nil, &AssessmentError{Reason: "response is missing technicalSkills"}
	}
	if assessment.RepoAnalyses == nil {
		return nil, &AssessmentError{Reason: "response is missing repoAnalyses"}
	}

	for _, analysis := range assessment.RepoAnalyses {
		if analysis.Name == "" {
			return nil, &AssessmentError{Reason: "repo analysis is missing a name"}
		}
		switch analysis.Completeness {
		case models.CompletenessLow, models.CompletenessMedium, models.CompletenessHigh:
		default:
			return nil, &AssessmentError{Reason: fmt.Sprintf("repo analysis %s has invalid completeness %q", analysis.Name, analysis.Completeness)}
		}
	}

	return &assessment, nil
}

// assessmentSchema is the response contract the model is required to follow
func assessmentSchema() *genai.Schema {
	stringList := &genai.Schema{
		Type:  genai.TypeArray,
		Items: &genai.Schema{Type: genai.TypeString},
	}

	repoAnalysis := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"name":  {Type: genai.TypeString},
			"score": {Type: genai.TypeNumber},
			"completeness": {
				Type: genai.TypeString,
				Enum: []string{models.CompletenessLow, models.CompletenessMedium, models.CompletenessHigh},
			},
			"summary":     {Type: genai.TypeString},
			"strengths":   stringList,
			"weaknesses":  stringList,
			"suggestions": stringList,
		},
		Required: []string{"name", "score", "completeness", "summary", "strengths", "weaknesses", "suggestions"},
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"profileScore":        {Type: genai.TypeNumber},
			"professionalPersona": {Type: genai.TypeString},
			"profileSummary":      {Type: genai.TypeString},
			"technicalSkills":     stringList,
			"overallImpression":   {Type: genai.TypeString},
			"careerAdvice":        {Type: genai.TypeString},
			"repoAnalyses": {
				Type:  genai.TypeArray,
				Items: repoAnalysis,
			},
		},
		Required: []string{"profileScore", "professionalPersona", "profileSummary", "technicalSkills", "overallImpression", "careerAdvice", "repoAnalyses"},
	}
}
