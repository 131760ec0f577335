package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fadilmartias/cv-screener/internal/apperror"
	"github.com/fadilmartias/cv-screener/internal/config"
	"github.com/fadilmartias/cv-screener/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendMailPostsCandidateRecord(t *testing.T) {
	var got model.Candidate
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/send-mail", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}))
	defer srv.Close()

	svc := NewMailService(&config.ScreenerConfig{MailURL: srv.URL, Timeout: 5 * time.Second})
	alice := model.Candidate{Name: "Alice", Email: "alice@example.com", Role: "Frontend Developer", Match: 88, Skills: []string{"React"}}
	require.NoError(t, svc.SendMail(context.Background(), alice))
	assert.Equal(t, alice, got)
}

func TestSendMailNilSkillsBecomeEmptyList(t *testing.T) {
	var raw map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}))
	defer srv.Close()

	svc := NewMailService(&config.ScreenerConfig{MailURL: srv.URL, Timeout: 5 * time.Second})
	require.NoError(t, svc.SendMail(context.Background(), model.Candidate{Name: "Bob"}))
	assert.Equal(t, []any{}, raw["skills"])
}

func TestSendMailFailureFlag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "SMTP auth failed"})
	}))
	defer srv.Close()

	svc := NewMailService(&config.ScreenerConfig{MailURL: srv.URL, Timeout: 5 * time.Second})
	err := svc.SendMail(context.Background(), model.Candidate{Name: "Bob"})
	var se *apperror.ServiceError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "SMTP auth failed", se.Message)
}

func TestSendMailSuccessFalseWithOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": false})
	}))
	defer srv.Close()

	svc := NewMailService(&config.ScreenerConfig{MailURL: srv.URL, Timeout: 5 * time.Second})
	err := svc.SendMail(context.Background(), model.Candidate{Name: "Bob"})
	assert.Equal(t, "Mail failed", apperror.UserMessage(err))
}
