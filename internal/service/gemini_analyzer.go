package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fadilmartias/cv-screener/internal/apperror"
	"github.com/fadilmartias/cv-screener/internal/model"
	"github.com/tidwall/gjson"
	"google.golang.org/genai"
)

// GeminiAnalyzer scores fit directly against Gemini using the skills held by
// the pipeline, instead of going through the screening backend.
type GeminiAnalyzer struct {
	gen   ContentGenerator
	model string
}

func NewGeminiAnalyzer(gen ContentGenerator, model string) *GeminiAnalyzer {
	return &GeminiAnalyzer{gen: gen, model: model}
}

func (a *GeminiAnalyzer) Analyze(ctx context.Context, req model.AnalysisRequest) (*model.AnalysisOutcome, error) {
	text, err := a.gen.GenerateContent(ctx, a.model, analysisPrompt(req))
	if err != nil {
		var apiErr *genai.APIError
		if errors.As(err, &apiErr) {
			return nil, &apperror.ServiceError{Op: opAnalyze, Message: apiErr.Message, StatusCode: apiErr.Code}
		}
		return nil, &apperror.TransportError{Op: opAnalyze, Err: err}
	}

	text = stripCodeFence(text)
	if !gjson.Valid(text) {
		return nil, &apperror.ServiceError{Op: opAnalyze, Message: "Invalid JSON response format from Gemini"}
	}
	return outcomeFrom(gjson.Parse(text)), nil
}

func analysisPrompt(req model.AnalysisRequest) string {
	return fmt.Sprintf(`Given the following extracted skills from a candidate's resume: %s,
and the job position being applied for is: '%s', please do the following:
- Calculate the matching percentage based on relevance.
- Identify the job position suitability (like 'Highly Suitable', 'Moderately Suitable', 'Low Suitable').
- Provide a brief analysis paragraph.
- Provide a final recommendation as 'High', 'Moderate', or 'Low'.

Return the response STRICTLY as JSON in the following format:
{
  "matching_percentage": <number 0-100>,
  "position_suitability": "<string>",
  "gemini_analysis": "<string>",
  "recommendation": "<High/Moderate/Low>"
}`, strings.Join(req.Skills, ", "), req.Position)
}

func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
