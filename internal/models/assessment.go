package models

// Completeness tiers assigned to individual repositories by the model
const (
	CompletenessLow    = "Low"
	CompletenessMedium = "Medium"
	CompletenessHigh   = "High"
)

// Assessment is the structured qualitative review returned by the model
type Assessment struct {
	ProfileScore        float64          `json:"profileScore"`
	ProfessionalPersona string           `json:"professionalPersona"`
	ProfileSummary      string           `json:"profileSummary"`
	TechnicalSkills     []string         `json:"technicalSkills"`
	OverallImpression   string           `json:"overallImpression"`
	CareerAdvice        string           `json:"careerAdvice"`
	RepoAnalyses        []RepoAssessment `json:"repoAnalyses"`
}

// RepoAssessment is the model's review of a single repository
type RepoAssessment struct {
	Name         string   `json:"name"`
	Score        float64  `json:"score"`
	Completeness string   `json:"completeness"`
	Summary      string   `json:"summary"`
	Strengths    []string `json:"strengths"`
	Weaknesses   []string `json:"weaknesses"`
	Suggestions  []string `json:"suggestions"`
}
