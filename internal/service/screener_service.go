package service

import (
	"bytes"
	"context"
	"net/http"

	"github.com/fadilmartias/cv-screener/internal/apperror"
	"github.com/fadilmartias/cv-screener/internal/config"
	"github.com/fadilmartias/cv-screener/internal/model"
	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

const (
	opExtract = "extract"
	opAnalyze = "analysis"
	opMail    = "mail"
)

type SkillExtractor interface {
	ExtractSkills(ctx context.Context, doc model.Document) (model.SkillSet, error)
}

type FitAnalyzer interface {
	Analyze(ctx context.Context, req model.AnalysisRequest) (*model.AnalysisOutcome, error)
}

// ScreenerService talks to the screening backend: /extract_skills and /analyze_skills.
type ScreenerService struct {
	client *resty.Client
}

func NewScreenerService(cfg *config.ScreenerConfig) *ScreenerService {
	client := resty.New().
		SetBaseURL(cfg.ScreenerURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")
	return &ScreenerService{client: client}
}

func (s *ScreenerService) ExtractSkills(ctx context.Context, doc model.Document) (model.SkillSet, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetMultipartField("pdf_file", doc.Name, model.MediaTypePDF, bytes.NewReader(doc.Content)).
		Post("/extract_skills")
	if err != nil {
		return nil, &apperror.TransportError{Op: opExtract, Err: err}
	}

	body, err := decodeEnvelope(opExtract, resp, "Failed to extract skills.")
	if err != nil {
		return nil, err
	}
	return skillsFrom(body.Get("extracted_skills")), nil
}

// skillsFrom reads extracted_skills.matched_common_skills. Older backends
// return the list directly under extracted_skills. Absent means empty;
// entries are kept exactly as returned.
func skillsFrom(extracted gjson.Result) model.SkillSet {
	list := extracted
	if extracted.IsObject() {
		list = extracted.Get("matched_common_skills")
	}
	skills := model.SkillSet{}
	if !list.IsArray() {
		return skills
	}
	for _, item := range list.Array() {
		skills = append(skills, item.String())
	}
	return skills
}

func (s *ScreenerService) Analyze(ctx context.Context, req model.AnalysisRequest) (*model.AnalysisOutcome, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{
			"pdf_name": req.DocumentName,
			"position": req.Position,
		}).
		Post("/analyze_skills")
	if err != nil {
		return nil, &apperror.TransportError{Op: opAnalyze, Err: err}
	}

	body, err := decodeEnvelope(opAnalyze, resp, "Analysis failed.")
	if err != nil {
		return nil, err
	}
	return outcomeFrom(body), nil
}

// outcomeFrom tolerates gemini_analysis arriving either as the rationale
// string or as the nested object the screening backend stores.
func outcomeFrom(r gjson.Result) *model.AnalysisOutcome {
	pct := r.Get("matching_percentage")
	suitability := r.Get("position_suitability").String()
	rationale := ""
	recommendation := r.Get("recommendation").String()

	analysis := r.Get("gemini_analysis")
	if analysis.IsObject() {
		rationale = analysis.Get("gemini_analysis").String()
		if suitability == "" {
			suitability = analysis.Get("position_suitability").String()
		}
		if !pct.Exists() {
			pct = analysis.Get("matching_percentage")
		}
		if recommendation == "" {
			recommendation = analysis.Get("recommendation").String()
		}
	} else {
		rationale = analysis.String()
	}

	rec, ok := model.ParseRecommendation(recommendation)
	if !ok {
		rec = model.RecommendationModerate
	}
	return &model.AnalysisOutcome{
		MatchPercentage: model.ClampPercentage(pct.Float()),
		Suitability:     suitability,
		Rationale:       rationale,
		Recommendation:  rec,
	}
}

// decodeEnvelope checks the {success, error} envelope shared by every
// backend endpoint and returns the parsed body on success.
func decodeEnvelope(op string, resp *resty.Response, fallback string) (gjson.Result, error) {
	raw := resp.String()
	if !gjson.Valid(raw) {
		msg := fallback
		if resp.IsError() {
			msg = http.StatusText(resp.StatusCode())
		}
		return gjson.Result{}, &apperror.ServiceError{Op: op, Message: msg, StatusCode: resp.StatusCode()}
	}

	body := gjson.Parse(raw)
	if resp.IsError() || !body.Get("success").Bool() {
		msg := body.Get("error").String()
		if msg == "" {
			msg = fallback
		}
		return gjson.Result{}, &apperror.ServiceError{Op: op, Message: msg, StatusCode: resp.StatusCode()}
	}
	return body, nil
}
