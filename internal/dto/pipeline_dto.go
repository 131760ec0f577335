package dto

import (
	"github.com/fadilmartias/cv-screener/internal/model"
	"github.com/fadilmartias/cv-screener/internal/usecase"
)

type PipelineDTO struct {
	State    string       `json:"state"`
	Document string       `json:"document,omitempty"`
	Skills   []string     `json:"skills"`
	Position string       `json:"position,omitempty"`
	Analysis *AnalysisDTO `json:"analysis,omitempty"`
}

type AnalysisDTO struct {
	MatchPercentage float64              `json:"matching_percentage"`
	Suitability     string               `json:"position_suitability"`
	Rationale       string               `json:"gemini_analysis"`
	Recommendation  model.Recommendation `json:"recommendation"`
}

type PositionRequest struct {
	Position string `json:"position"`
}

func NewPipelineDTO(snap usecase.PipelineSnapshot) PipelineDTO {
	out := PipelineDTO{
		State:    snap.State.String(),
		Document: snap.DocumentName,
		Skills:   []string(snap.Skills),
		Position: snap.Position,
	}
	if out.Skills == nil {
		out.Skills = []string{}
	}
	if snap.Outcome != nil {
		out.Analysis = NewAnalysisDTO(snap.Outcome)
	}
	return out
}

func NewAnalysisDTO(o *model.AnalysisOutcome) *AnalysisDTO {
	return &AnalysisDTO{
		MatchPercentage: o.MatchPercentage,
		Suitability:     o.Suitability,
		Rationale:       o.Rationale,
		Recommendation:  o.Recommendation,
	}
}
