package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/fadilmartias/cv-screener/internal/config"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, prompt string) (string, error)
}

// GeminiService wraps the genai client with retry, backoff and a simple
// consecutive-failure circuit breaker.
type GeminiService struct {
	Client         *genai.Client
	MaxRetries     int
	BaseDelay      time.Duration
	MaxDelay       time.Duration
	RequestTimeout time.Duration

	log               *zap.Logger
	mu                sync.Mutex
	consecutiveErrors int
	circuitBreakerMax int
}

func NewGeminiService(ctx context.Context, cfg *config.GeminiConfig, log *zap.Logger) (*GeminiService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &GeminiService{
		Client:            client,
		MaxRetries:        3,
		BaseDelay:         time.Second,
		MaxDelay:          90 * time.Second,
		RequestTimeout:    90 * time.Second,
		log:               log,
		circuitBreakerMax: 5,
	}, nil
}

// GenerateContent asks the model for a JSON answer and returns the response text.
func (s *GeminiService) GenerateContent(ctx context.Context, model string, prompt string) (string, error) {
	if model == "" {
		return "", fmt.Errorf("model name cannot be empty")
	}
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}

	if open, n := s.circuitOpen(); open {
		return "", fmt.Errorf("circuit breaker open: too many consecutive errors (%d)", n)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.RequestTimeout)
	defer cancel()

	genConfig := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(0.1)),
		ResponseMIMEType: "application/json",
	}

	var lastErr error
	for attempt := 0; attempt <= s.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := s.calculateBackoff(attempt)
			s.log.Info("retrying GenerateContent",
				zap.Int("attempt", attempt),
				zap.Int("max_retries", s.MaxRetries),
				zap.Duration("delay", delay))

			select {
			case <-time.After(delay):
			case <-timeoutCtx.Done():
				return "", fmt.Errorf("context timeout during retry: %w", timeoutCtx.Err())
			}
		}

		result, err := s.Client.Models.GenerateContent(timeoutCtx, model, genai.Text(prompt), genConfig)
		if err == nil {
			s.recordSuccess()
			if err := validateGenerateResponse(result); err != nil {
				return "", fmt.Errorf("invalid response: %w", err)
			}
			return result.Text(), nil
		}

		lastErr = err
		if !isRetryableError(err) {
			s.log.Warn("non-retryable gemini error", zap.Error(err))
			s.recordFailure()
			return "", fmt.Errorf("generate content failed: %w", err)
		}
		s.log.Warn("retryable gemini error", zap.Int("attempt", attempt+1), zap.Error(err))
	}

	s.recordFailure()
	return "", fmt.Errorf("max retries (%d) exceeded for GenerateContent: %w", s.MaxRetries, lastErr)
}

func (s *GeminiService) calculateBackoff(attempt int) time.Duration {
	delay := s.BaseDelay * time.Duration(math.Pow(2, float64(attempt-1)))
	if delay > s.MaxDelay {
		delay = s.MaxDelay
	}

	jitter := time.Duration(float64(delay) * 0.25)
	return delay - jitter/2 + time.Duration(float64(jitter)*0.5)
}

func (s *GeminiService) circuitOpen() (bool, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.consecutiveErrors >= s.circuitBreakerMax, s.consecutiveErrors
}

func (s *GeminiService) recordSuccess() {
	s.mu.Lock()
	s.consecutiveErrors = 0
	s.mu.Unlock()
}

func (s *GeminiService) recordFailure() {
	s.mu.Lock()
	s.consecutiveErrors++
	s.mu.Unlock()
}

func (s *GeminiService) ResetCircuitBreaker() {
	s.recordSuccess()
	s.log.Info("gemini circuit breaker reset")
}

func (s *GeminiService) GetCircuitBreakerStatus() (consecutiveErrors int, isOpen bool) {
	isOpen, consecutiveErrors = s.circuitOpen()
	return consecutiveErrors, isOpen
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 429, 500, 502, 503, 504:
			return true
		default:
			return false
		}
	}

	errMsg := err.Error()
	return strings.Contains(errMsg, "connection refused") ||
		strings.Contains(errMsg, "connection reset") ||
		strings.Contains(errMsg, "timeout") ||
		strings.Contains(errMsg, "temporary failure") ||
		strings.Contains(errMsg, "EOF")
}

func validateGenerateResponse(resp *genai.GenerateContentResponse) error {
	if resp == nil {
		return fmt.Errorf("response is nil")
	}
	if len(resp.Candidates) == 0 {
		return fmt.Errorf("no candidates in response")
	}
	if resp.Candidates[0].Content == nil {
		return fmt.Errorf("candidate content is nil")
	}
	if len(resp.Candidates[0].Content.Parts) == 0 {
		return fmt.Errorf("no parts in content")
	}
	return nil
}
