package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fadilmartias/cv-screener/internal/apperror"
	"github.com/fadilmartias/cv-screener/internal/model"
	"github.com/fadilmartias/cv-screener/internal/repository"
	"github.com/fadilmartias/cv-screener/internal/service"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultCampaignKey    = "mailStatus"
	DefaultMatchThreshold = 75.0
)

type CampaignOptions struct {
	Key            string
	MatchThreshold float64
}

// CandidateView pairs a visible candidate with its current send status.
type CandidateView struct {
	model.Candidate
	Status model.SendStatus
}

type Confirmation struct {
	Pending int
	Message string
}

type DispatchSummary struct {
	RunID      uuid.UUID
	Sent       int
	Failed     int
	Skipped    int
	Failures   []*apperror.MailError
	StartedAt  time.Time
	FinishedAt time.Time
}

type sendOutcome int

const (
	outcomeSent sendOutcome = iota
	outcomeSkipped
	outcomeFailed
)

// Campaign dispatches outreach mail to the roster filtered by match threshold
// and keeps a durable name → "sent" map so no candidate is mailed twice.
type Campaign struct {
	store     repository.KeyValueStore
	mailer    service.Mailer
	observer  Observer
	log       *zap.Logger
	key       string
	threshold float64

	mu       sync.Mutex
	roster   []model.Candidate
	status   map[string]model.SendStatus
	batching atomic.Bool
	inflight singleflight.Group
}

func NewCampaign(store repository.KeyValueStore, mailer service.Mailer, opts CampaignOptions, log *zap.Logger, observer Observer) *Campaign {
	if opts.Key == "" {
		opts.Key = DefaultCampaignKey
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Campaign{
		store:     store,
		mailer:    mailer,
		observer:  observer,
		log:       log.Named("campaign"),
		key:       opts.Key,
		threshold: opts.MatchThreshold,
		status:    make(map[string]model.SendStatus),
	}
}

// FilterRoster returns a new slice with every candidate whose match is
// strictly above threshold, in roster order.
func FilterRoster(roster []model.Candidate, threshold float64) []model.Candidate {
	filtered := make([]model.Candidate, 0, len(roster))
	for _, c := range roster {
		if c.Match > threshold {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

// Initialize sets the visible roster and reloads the persisted status map.
// Absent, unreadable or malformed status is treated as empty.
func (c *Campaign) Initialize(ctx context.Context, roster []model.Candidate) {
	filtered := FilterRoster(roster, c.threshold)
	status := c.loadStatus(ctx)

	c.mu.Lock()
	c.roster = filtered
	c.status = status
	c.mu.Unlock()

	c.log.Info("campaign initialized",
		zap.Int("roster", len(roster)),
		zap.Int("visible", len(filtered)),
		zap.Int("sent", len(status)))
}

func (c *Campaign) loadStatus(ctx context.Context) map[string]model.SendStatus {
	status := make(map[string]model.SendStatus)

	raw, ok, err := c.store.Get(ctx, c.key)
	if err != nil {
		c.log.Warn("could not read mail status, starting empty", zap.String("key", c.key), zap.Error(err))
		return status
	}
	if !ok {
		return status
	}

	var persisted map[string]string
	if err := json.Unmarshal([]byte(raw), &persisted); err != nil {
		c.log.Warn("malformed mail status, starting empty", zap.String("key", c.key), zap.Error(err))
		return status
	}
	for name, s := range persisted {
		if model.SendStatus(s) == model.StatusSent {
			status[name] = model.StatusSent
		}
	}
	return status
}

func (c *Campaign) Roster() []model.Candidate {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Candidate(nil), c.roster...)
}

// Candidate looks a visible candidate up by name.
func (c *Campaign) Candidate(name string) (model.Candidate, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, cand := range c.roster {
		if cand.Name == name {
			return cand, true
		}
	}
	return model.Candidate{}, false
}

func (c *Campaign) StatusOf(name string) model.SendStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusOf(name)
}

func (c *Campaign) statusOf(name string) model.SendStatus {
	if c.status[name] == model.StatusSent {
		return model.StatusSent
	}
	return model.StatusUnsent
}

func (c *Campaign) Candidates() []CandidateView {
	c.mu.Lock()
	defer c.mu.Unlock()
	views := make([]CandidateView, 0, len(c.roster))
	for _, cand := range c.roster {
		views = append(views, CandidateView{Candidate: cand, Status: c.statusOf(cand.Name)})
	}
	return views
}

// StatusMap returns a copy of the sent entries.
func (c *Campaign) StatusMap() map[string]model.SendStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]model.SendStatus, len(c.status))
	for k, v := range c.status {
		out[k] = v
	}
	return out
}

// SendOne mails a single candidate. A candidate already marked sent is
// skipped without a remote call. Concurrent calls for the same name share
// one request.
func (c *Campaign) SendOne(ctx context.Context, candidate model.Candidate) error {
	_, err := c.sendOne(ctx, candidate)
	return err
}

func (c *Campaign) sendOne(ctx context.Context, candidate model.Candidate) (sendOutcome, error) {
	v, err, _ := c.inflight.Do(candidate.Name, func() (any, error) {
		return c.dispatch(ctx, candidate)
	})
	outcome, _ := v.(sendOutcome)
	return outcome, err
}

func (c *Campaign) dispatch(ctx context.Context, candidate model.Candidate) (sendOutcome, error) {
	if c.StatusOf(candidate.Name) == model.StatusSent {
		c.log.Debug("already sent, skipping", zap.String("candidate", candidate.Name))
		notify(c.observer, EventMailSkipped, LevelInfo, candidate.Name, fmt.Sprintf("Email already sent to %s", candidate.Name))
		return outcomeSkipped, nil
	}

	if err := c.mailer.SendMail(ctx, candidate); err != nil {
		mailErr := &apperror.MailError{Candidate: candidate.Name, Err: err}
		c.log.Warn("mail failed", zap.String("candidate", candidate.Name), zap.Error(err))
		notify(c.observer, EventMailFailed, LevelError, candidate.Name, fmt.Sprintf("Failed to send email to %s", candidate.Name))
		return outcomeFailed, mailErr
	}

	if err := c.markSent(context.WithoutCancel(ctx), candidate.Name); err != nil {
		c.log.Error("mail sent but status not persisted", zap.String("candidate", candidate.Name), zap.Error(err))
		notify(c.observer, EventStatusPersistFailed, LevelWarn, candidate.Name,
			fmt.Sprintf("Email sent to %s but status could not be saved", candidate.Name))
	}

	c.log.Info("mail sent", zap.String("candidate", candidate.Name))
	notify(c.observer, EventMailSent, LevelSuccess, candidate.Name, fmt.Sprintf("Email sent to %s", candidate.Name))
	return outcomeSent, nil
}

// markSent records the send in memory and writes the full map back. The
// persisted map is re-read and merged first so entries written by another
// process since Initialize are kept; merging only ever adds "sent".
func (c *Campaign) markSent(ctx context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.status[name] = model.StatusSent
	for persisted := range c.loadStatus(ctx) {
		c.status[persisted] = model.StatusSent
	}

	payload, err := json.Marshal(c.status)
	if err != nil {
		return fmt.Errorf("encode mail status: %w", err)
	}
	if err := c.store.Set(ctx, c.key, string(payload)); err != nil {
		return fmt.Errorf("persist mail status: %w", err)
	}
	return nil
}

// RequestConfirmation describes what SendAll would do, for the caller to
// confirm before calling SendAll(ctx, true).
func (c *Campaign) RequestConfirmation() Confirmation {
	c.mu.Lock()
	pending := 0
	for _, cand := range c.roster {
		if c.statusOf(cand.Name) != model.StatusSent {
			pending++
		}
	}
	c.mu.Unlock()

	return Confirmation{
		Pending: pending,
		Message: fmt.Sprintf("Send emails to all top candidates? %d pending.", pending),
	}
}

// SendAll mails every visible candidate not yet sent, one at a time in roster
// order. A failure is recorded and the batch moves on; it is never aborted.
func (c *Campaign) SendAll(ctx context.Context, confirmed bool) (*DispatchSummary, error) {
	if !confirmed {
		return nil, apperror.NewValidationError(apperror.ReasonConfirmationRequired, "confirm before sending to all candidates")
	}
	if !c.batching.CompareAndSwap(false, true) {
		return nil, apperror.ErrBatchInProgress
	}
	defer c.batching.Store(false)

	summary := &DispatchSummary{RunID: uuid.New(), StartedAt: time.Now().UTC()}
	log := c.log.With(zap.String("run_id", summary.RunID.String()))
	roster := c.Roster()
	log.Info("batch send started", zap.Int("candidates", len(roster)))

	for _, candidate := range roster {
		if c.StatusOf(candidate.Name) == model.StatusSent {
			summary.Skipped++
			continue
		}

		outcome, err := c.sendOne(ctx, candidate)
		switch {
		case err != nil:
			summary.Failed++
			var mailErr *apperror.MailError
			if !errors.As(err, &mailErr) {
				mailErr = &apperror.MailError{Candidate: candidate.Name, Err: err}
			}
			summary.Failures = append(summary.Failures, mailErr)
		case outcome == outcomeSkipped:
			summary.Skipped++
		default:
			summary.Sent++
		}
	}
	summary.FinishedAt = time.Now().UTC()

	log.Info("batch send finished",
		zap.Int("sent", summary.Sent),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
		zap.Duration("took", summary.FinishedAt.Sub(summary.StartedAt)))
	level := LevelSuccess
	if summary.Failed > 0 {
		level = LevelWarn
	}
	notify(c.observer, EventBatchComplete, level, "",
		fmt.Sprintf("All emails processed! %d sent, %d failed.", summary.Sent, summary.Failed))
	return summary, nil
}

// ResetStatus clears the persisted map and the in-memory mirror. A store
// failure is logged; the in-memory map is cleared regardless.
func (c *Campaign) ResetStatus(ctx context.Context) {
	c.mu.Lock()
	err := c.store.Delete(ctx, c.key)
	c.status = make(map[string]model.SendStatus)
	c.mu.Unlock()

	if err != nil {
		c.log.Error("could not clear persisted mail status", zap.String("key", c.key), zap.Error(err))
	}
	c.log.Info("mail status reset")
	notify(c.observer, EventStatusReset, LevelInfo, "", "Mail status reset")
}

// BatchRunning reports whether a SendAll is in progress.
func (c *Campaign) BatchRunning() bool {
	return c.batching.Load()
}
