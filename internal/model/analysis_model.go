package model

import "strings"

type Recommendation string

const (
	RecommendationHigh     Recommendation = "High"
	RecommendationModerate Recommendation = "Moderate"
	RecommendationLow      Recommendation = "Low"
)

// ParseRecommendation maps a service label onto a tier. Unknown labels report false.
func ParseRecommendation(label string) (Recommendation, bool) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "high":
		return RecommendationHigh, true
	case "moderate", "medium":
		return RecommendationModerate, true
	case "low":
		return RecommendationLow, true
	}
	return "", false
}

type AnalysisRequest struct {
	DocumentName string   `json:"pdf_name"`
	Position     string   `json:"position"`
	Skills       SkillSet `json:"-"`
}

type AnalysisOutcome struct {
	MatchPercentage float64        `json:"matching_percentage"`
	Suitability     string         `json:"position_suitability"`
	Rationale       string         `json:"gemini_analysis"`
	Recommendation  Recommendation `json:"recommendation"`
}

func ClampPercentage(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
