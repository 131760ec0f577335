package usecase

import (
	"time"

	"github.com/google/uuid"
)

type EventKind string

const (
	EventDocumentRejected    EventKind = "document-rejected"
	EventDocumentSelected    EventKind = "document-selected"
	EventSkillsExtracted     EventKind = "skills-extracted"
	EventExtractionFailed    EventKind = "extraction-failed"
	EventAnalysisRejected    EventKind = "analysis-rejected"
	EventAnalysisComplete    EventKind = "analysis-complete"
	EventAnalysisFailed      EventKind = "analysis-failed"
	EventMailSent            EventKind = "mail-sent"
	EventMailSkipped         EventKind = "mail-skipped"
	EventMailFailed          EventKind = "mail-failed"
	EventBatchComplete       EventKind = "batch-complete"
	EventStatusReset         EventKind = "status-reset"
	EventStatusPersistFailed EventKind = "status-persist-failed"
)

type EventLevel string

const (
	LevelInfo    EventLevel = "info"
	LevelSuccess EventLevel = "success"
	LevelWarn    EventLevel = "warn"
	LevelError   EventLevel = "error"
)

// Event is a structured notification for the presentation layer to render.
type Event struct {
	ID        uuid.UUID  `json:"id"`
	Kind      EventKind  `json:"kind"`
	Level     EventLevel `json:"level"`
	Candidate string     `json:"candidate,omitempty"`
	Message   string     `json:"message"`
	At        time.Time  `json:"at"`
}

// Observer receives events synchronously. Controllers never hold their own
// lock while calling it, so an observer may query the controller.
type Observer func(Event)

func notify(observer Observer, kind EventKind, level EventLevel, candidate, message string) {
	if observer == nil {
		return
	}
	observer(Event{
		ID:        uuid.New(),
		Kind:      kind,
		Level:     level,
		Candidate: candidate,
		Message:   message,
		At:        time.Now().UTC(),
	})
}
