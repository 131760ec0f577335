package service

import (
	"context"

	"github.com/fadilmartias/cv-screener/internal/apperror"
	"github.com/fadilmartias/cv-screener/internal/config"
	"github.com/fadilmartias/cv-screener/internal/model"
	"github.com/go-resty/resty/v2"
)

type Mailer interface {
	SendMail(ctx context.Context, candidate model.Candidate) error
}

// MailService posts a candidate record to /send-mail. Requests are never
// retried here: a retried POST could deliver the same mail twice.
type MailService struct {
	client *resty.Client
}

func NewMailService(cfg *config.ScreenerConfig) *MailService {
	client := resty.New().
		SetBaseURL(cfg.MailURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")
	return &MailService{client: client}
}

func (s *MailService) SendMail(ctx context.Context, candidate model.Candidate) error {
	skills := candidate.Skills
	if skills == nil {
		skills = []string{}
	}
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(model.Candidate{
			Name:   candidate.Name,
			Email:  candidate.Email,
			Role:   candidate.Role,
			Match:  candidate.Match,
			Skills: skills,
		}).
		Post("/send-mail")
	if err != nil {
		return &apperror.TransportError{Op: opMail, Err: err}
	}

	_, err = decodeEnvelope(opMail, resp, "Mail failed")
	return err
}
