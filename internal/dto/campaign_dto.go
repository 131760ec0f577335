package dto

import (
	"time"

	"github.com/fadilmartias/cv-screener/internal/apperror"
	"github.com/fadilmartias/cv-screener/internal/usecase"
	"github.com/google/uuid"
)

type CandidateDTO struct {
	Name   string   `json:"name"`
	Email  string   `json:"email"`
	Role   string   `json:"role"`
	Match  float64  `json:"match"`
	Skills []string `json:"skills"`
	Status string   `json:"status"`
}

type ConfirmationDTO struct {
	Pending int    `json:"pending"`
	Message string `json:"message"`
}

type SendAllRequest struct {
	Confirmed bool `json:"confirmed"`
}

type FailureDTO struct {
	Candidate string `json:"candidate"`
	Message   string `json:"message"`
}

type DispatchSummaryDTO struct {
	RunID      uuid.UUID    `json:"run_id"`
	Sent       int          `json:"sent"`
	Failed     int          `json:"failed"`
	Skipped    int          `json:"skipped"`
	Failures   []FailureDTO `json:"failures"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
}

func NewCandidateDTO(v usecase.CandidateView) CandidateDTO {
	skills := v.Skills
	if skills == nil {
		skills = []string{}
	}
	return CandidateDTO{
		Name:   v.Name,
		Email:  v.Email,
		Role:   v.Role,
		Match:  v.Match,
		Skills: skills,
		Status: string(v.Status),
	}
}

func NewCandidateDTOs(views []usecase.CandidateView) []CandidateDTO {
	out := make([]CandidateDTO, 0, len(views))
	for _, v := range views {
		out = append(out, NewCandidateDTO(v))
	}
	return out
}

func NewDispatchSummaryDTO(s *usecase.DispatchSummary) DispatchSummaryDTO {
	failures := make([]FailureDTO, 0, len(s.Failures))
	for _, f := range s.Failures {
		failures = append(failures, FailureDTO{Candidate: f.Candidate, Message: apperror.UserMessage(f.Err)})
	}
	return DispatchSummaryDTO{
		RunID:      s.RunID,
		Sent:       s.Sent,
		Failed:     s.Failed,
		Skipped:    s.Skipped,
		Failures:   failures,
		StartedAt:  s.StartedAt,
		FinishedAt: s.FinishedAt,
	}
}
