package service

import (
	"context"
	"errors"
	"testing"

	"github.com/fadilmartias/cv-screener/internal/apperror"
	"github.com/fadilmartias/cv-screener/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	text   string
	err    error
	model  string
	prompt string
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, model, prompt string) (string, error) {
	f.model = model
	f.prompt = prompt
	return f.text, f.err
}

func TestGeminiAnalyzerParsesFencedJSON(t *testing.T) {
	gen := &fakeGenerator{text: "```json\n{\"matching_percentage\": 71.5, \"position_suitability\": \"Moderately Suitable\", \"gemini_analysis\": \"Good base.\", \"recommendation\": \"Moderate\"}\n```"}
	a := NewGeminiAnalyzer(gen, "gemini-2.5-flash")

	out, err := a.Analyze(context.Background(), model.AnalysisRequest{
		DocumentName: "cv.pdf", Position: "Data Scientist", Skills: model.SkillSet{"python", "pandas"},
	})
	require.NoError(t, err)
	assert.Equal(t, 71.5, out.MatchPercentage)
	assert.Equal(t, model.RecommendationModerate, out.Recommendation)
	assert.Equal(t, "gemini-2.5-flash", gen.model)
	assert.Contains(t, gen.prompt, "python, pandas")
	assert.Contains(t, gen.prompt, "'Data Scientist'")
}

func TestGeminiAnalyzerRejectsNonJSON(t *testing.T) {
	a := NewGeminiAnalyzer(&fakeGenerator{text: "I think they are great"}, "m")
	_, err := a.Analyze(context.Background(), model.AnalysisRequest{Position: "x", Skills: model.SkillSet{"go"}})
	assert.Equal(t, "Invalid JSON response format from Gemini", apperror.UserMessage(err))
}

func TestGeminiAnalyzerTransportFailure(t *testing.T) {
	a := NewGeminiAnalyzer(&fakeGenerator{err: errors.New("connection reset")}, "m")
	_, err := a.Analyze(context.Background(), model.AnalysisRequest{Position: "x", Skills: model.SkillSet{"go"}})
	var te *apperror.TransportError
	assert.True(t, errors.As(err, &te))
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, false},
		{"reset", errors.New("read: connection reset by peer"), true},
		{"eof", errors.New("unexpected EOF"), true},
		{"other", errors.New("invalid argument"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableError(tt.err))
		})
	}
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("  {\"a\":1} "))
}
