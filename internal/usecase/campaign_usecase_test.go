package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/fadilmartias/cv-screener/internal/apperror"
	"github.com/fadilmartias/cv-screener/internal/model"
	"github.com/fadilmartias/cv-screener/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	mu      sync.Mutex
	calls   []string
	failFor map[string]error
	gate    chan struct{}
	started chan string
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{failFor: map[string]error{}}
}

func (f *fakeMailer) SendMail(ctx context.Context, c model.Candidate) error {
	f.mu.Lock()
	f.calls = append(f.calls, c.Name)
	err := f.failFor[c.Name]
	gate := f.gate
	f.mu.Unlock()

	if f.started != nil {
		f.started <- c.Name
	}
	if gate != nil {
		<-gate
	}
	return err
}

func (f *fakeMailer) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type brokenStore struct {
	*repository.MemoryStore
	getErr, setErr, deleteErr error
}

func (b *brokenStore) Get(ctx context.Context, key string) (string, bool, error) {
	if b.getErr != nil {
		return "", false, b.getErr
	}
	return b.MemoryStore.Get(ctx, key)
}

func (b *brokenStore) Set(ctx context.Context, key, value string) error {
	if b.setErr != nil {
		return b.setErr
	}
	return b.MemoryStore.Set(ctx, key, value)
}

func (b *brokenStore) Delete(ctx context.Context, key string) error {
	if b.deleteErr != nil {
		return b.deleteErr
	}
	return b.MemoryStore.Delete(ctx, key)
}

var scenarioRoster = []model.Candidate{
	{Name: "Alice", Email: "alice@example.com", Role: "Frontend Developer", Match: 88, Skills: []string{"React"}},
	{Name: "Bob", Email: "bob@example.com", Role: "Backend Developer", Match: 92, Skills: []string{"Node.js"}},
	{Name: "Carl", Email: "carl@example.com", Role: "Data Scientist", Match: 60, Skills: []string{"Python"}},
}

func newTestCampaign(store repository.KeyValueStore, mailer *fakeMailer, observer Observer) *Campaign {
	return NewCampaign(store, mailer, CampaignOptions{Key: "mailStatus", MatchThreshold: DefaultMatchThreshold}, nil, observer)
}

func persisted(t *testing.T, store repository.KeyValueStore) map[string]string {
	t.Helper()
	raw, ok, err := store.Get(context.Background(), "mailStatus")
	require.NoError(t, err)
	if !ok {
		return nil
	}
	var out map[string]string
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	return out
}

func TestFilterRosterIsStrictAndOrderPreserving(t *testing.T) {
	roster := []model.Candidate{{Name: "A", Match: 75}, {Name: "B", Match: 75.5}, {Name: "C", Match: 99}, {Name: "D", Match: 10}}
	filtered := FilterRoster(roster, 75)
	assert.Equal(t, []model.Candidate{{Name: "B", Match: 75.5}, {Name: "C", Match: 99}}, filtered)
	assert.Len(t, roster, 4)
}

func TestSendAllScenario(t *testing.T) {
	store := repository.NewMemoryStore()
	mailer := newFakeMailer()
	c := newTestCampaign(store, mailer, nil)
	c.Initialize(context.Background(), scenarioRoster)

	names := []string{}
	for _, cand := range c.Roster() {
		names = append(names, cand.Name)
	}
	assert.Equal(t, []string{"Alice", "Bob"}, names)

	summary, err := c.SendAll(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Sent)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, []string{"Alice", "Bob"}, mailer.sent())
	assert.NotContains(t, mailer.sent(), "Carl")
	assert.Equal(t, map[string]string{"Alice": "sent", "Bob": "sent"}, persisted(t, store))
}

func TestSendOneSkipsAlreadySent(t *testing.T) {
	store := repository.NewMemoryStore()
	mailer := newFakeMailer()
	rec := &eventRecorder{}
	c := newTestCampaign(store, mailer, rec.observe)
	c.Initialize(context.Background(), scenarioRoster)

	alice := scenarioRoster[0]
	require.NoError(t, c.SendOne(context.Background(), alice))
	require.NoError(t, c.SendOne(context.Background(), alice))

	assert.Equal(t, []string{"Alice"}, mailer.sent())
	assert.Equal(t, model.StatusSent, c.StatusOf("Alice"))
	assert.Equal(t, []EventKind{EventMailSent, EventMailSkipped}, rec.kinds())
}

func TestSendOneFailureLeavesStatusUnsent(t *testing.T) {
	store := repository.NewMemoryStore()
	mailer := newFakeMailer()
	mailer.failFor["Alice"] = &apperror.ServiceError{Op: "mail", Message: "SMTP auth failed"}
	c := newTestCampaign(store, mailer, nil)
	c.Initialize(context.Background(), scenarioRoster)

	err := c.SendOne(context.Background(), scenarioRoster[0])
	var mailErr *apperror.MailError
	require.True(t, errors.As(err, &mailErr))
	assert.Equal(t, "Alice", mailErr.Candidate)
	assert.Equal(t, model.StatusUnsent, c.StatusOf("Alice"))
	assert.Nil(t, persisted(t, store))

	mailer.mu.Lock()
	delete(mailer.failFor, "Alice")
	mailer.mu.Unlock()
	require.NoError(t, c.SendOne(context.Background(), scenarioRoster[0]))
	assert.Equal(t, model.StatusSent, c.StatusOf("Alice"))
}

func TestSendAllSkipsPersistedSentInRosterOrder(t *testing.T) {
	store := repository.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), "mailStatus", `{"Bob":"sent","Dana":"sent"}`))

	roster := []model.Candidate{
		{Name: "Alice", Match: 80}, {Name: "Bob", Match: 90}, {Name: "Cleo", Match: 85},
		{Name: "Dana", Match: 95}, {Name: "Eve", Match: 76},
	}
	mailer := newFakeMailer()
	c := newTestCampaign(store, mailer, nil)
	c.Initialize(context.Background(), roster)

	summary, err := c.SendAll(context.Background(), true)
	require.NoError(t, err)

	assert.Equal(t, []string{"Alice", "Cleo", "Eve"}, mailer.sent())
	assert.Equal(t, 3, summary.Sent)
	assert.Equal(t, 2, summary.Skipped)
	assert.Equal(t, map[string]string{
		"Alice": "sent", "Bob": "sent", "Cleo": "sent", "Dana": "sent", "Eve": "sent",
	}, persisted(t, store))
}

func TestSendAllIsolatesFailures(t *testing.T) {
	store := repository.NewMemoryStore()
	roster := []model.Candidate{{Name: "Alice", Match: 80}, {Name: "Bob", Match: 90}, {Name: "Cleo", Match: 85}}
	mailer := newFakeMailer()
	mailer.failFor["Bob"] = &apperror.TransportError{Op: "mail", Err: errors.New("connection reset")}
	rec := &eventRecorder{}
	c := newTestCampaign(store, mailer, rec.observe)
	c.Initialize(context.Background(), roster)

	summary, err := c.SendAll(context.Background(), true)
	require.NoError(t, err)

	assert.Equal(t, []string{"Alice", "Bob", "Cleo"}, mailer.sent())
	assert.Equal(t, 2, summary.Sent)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, "Bob", summary.Failures[0].Candidate)
	assert.Equal(t, model.StatusUnsent, c.StatusOf("Bob"))
	assert.Equal(t, map[string]string{"Alice": "sent", "Cleo": "sent"}, persisted(t, store))
	assert.Equal(t, EventBatchComplete, rec.kinds()[len(rec.kinds())-1])

	mailer.mu.Lock()
	delete(mailer.failFor, "Bob")
	mailer.mu.Unlock()
	summary, err = c.SendAll(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Sent)
	assert.Equal(t, 2, summary.Skipped)
	assert.Equal(t, []string{"Alice", "Bob", "Cleo", "Bob"}, mailer.sent())
}

func TestSendAllRequiresConfirmation(t *testing.T) {
	mailer := newFakeMailer()
	c := newTestCampaign(repository.NewMemoryStore(), mailer, nil)
	c.Initialize(context.Background(), scenarioRoster)

	confirmation := c.RequestConfirmation()
	assert.Equal(t, 2, confirmation.Pending)

	_, err := c.SendAll(context.Background(), false)
	assert.True(t, apperror.IsValidation(err, apperror.ReasonConfirmationRequired))
	assert.Empty(t, mailer.sent())
}

func TestSendAllRejectsReentrantBatch(t *testing.T) {
	mailer := newFakeMailer()
	mailer.gate = make(chan struct{})
	mailer.started = make(chan string, 4)
	c := newTestCampaign(repository.NewMemoryStore(), mailer, nil)
	c.Initialize(context.Background(), scenarioRoster)

	done := make(chan *DispatchSummary, 1)
	go func() {
		summary, _ := c.SendAll(context.Background(), true)
		done <- summary
	}()
	assert.Equal(t, "Alice", <-mailer.started)
	assert.True(t, c.BatchRunning())

	_, err := c.SendAll(context.Background(), true)
	assert.ErrorIs(t, err, apperror.ErrBatchInProgress)

	close(mailer.gate)
	summary := <-done
	assert.Equal(t, 2, summary.Sent)
	assert.False(t, c.BatchRunning())
	assert.Equal(t, []string{"Alice", "Bob"}, mailer.sent())
}

func TestConcurrentSendOneMailsOnce(t *testing.T) {
	mailer := newFakeMailer()
	mailer.gate = make(chan struct{})
	mailer.started = make(chan string, 4)
	c := newTestCampaign(repository.NewMemoryStore(), mailer, nil)
	c.Initialize(context.Background(), scenarioRoster)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		errs <- c.SendOne(context.Background(), scenarioRoster[0])
	}()
	<-mailer.started

	wg.Add(1)
	go func() {
		defer wg.Done()
		errs <- c.SendOne(context.Background(), scenarioRoster[0])
	}()

	close(mailer.gate)
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, []string{"Alice"}, mailer.sent())
}

func TestResetThenInitializeShowsEveryoneUnsent(t *testing.T) {
	store := repository.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), "mailStatus", `{"Alice":"sent","Bob":"sent"}`))
	rec := &eventRecorder{}
	c := newTestCampaign(store, newFakeMailer(), rec.observe)
	c.Initialize(context.Background(), scenarioRoster)
	assert.Equal(t, model.StatusSent, c.StatusOf("Alice"))

	c.ResetStatus(context.Background())
	c.Initialize(context.Background(), scenarioRoster)

	for _, view := range c.Candidates() {
		assert.Equal(t, model.StatusUnsent, view.Status, view.Name)
	}
	assert.Empty(t, c.StatusMap())
	assert.Nil(t, persisted(t, store))
	assert.Len(t, c.Roster(), 2)
	assert.Equal(t, []EventKind{EventStatusReset}, rec.kinds())
}

func TestResetStatusClearsMemoryEvenWhenStoreFails(t *testing.T) {
	store := &brokenStore{MemoryStore: repository.NewMemoryStore(), deleteErr: errors.New("disk full")}
	c := newTestCampaign(store, newFakeMailer(), nil)
	c.Initialize(context.Background(), scenarioRoster)
	require.NoError(t, c.SendOne(context.Background(), scenarioRoster[0]))

	c.ResetStatus(context.Background())
	assert.Equal(t, model.StatusUnsent, c.StatusOf("Alice"))
}

func TestInitializeToleratesBadPersistedState(t *testing.T) {
	tests := []struct {
		name  string
		store repository.KeyValueStore
	}{
		{"malformed json", func() repository.KeyValueStore {
			s := repository.NewMemoryStore()
			_ = s.Set(context.Background(), "mailStatus", "{not json")
			return s
		}()},
		{"wrong shape", func() repository.KeyValueStore {
			s := repository.NewMemoryStore()
			_ = s.Set(context.Background(), "mailStatus", `["Alice"]`)
			return s
		}()},
		{"unknown status values", func() repository.KeyValueStore {
			s := repository.NewMemoryStore()
			_ = s.Set(context.Background(), "mailStatus", `{"Alice":"queued"}`)
			return s
		}()},
		{"read error", &brokenStore{MemoryStore: repository.NewMemoryStore(), getErr: errors.New("io")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCampaign(tt.store, newFakeMailer(), nil)
			c.Initialize(context.Background(), scenarioRoster)
			assert.Empty(t, c.StatusMap())
			assert.Equal(t, model.StatusUnsent, c.StatusOf("Alice"))
		})
	}
}

func TestInitializeIsDeterministic(t *testing.T) {
	store := repository.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), "mailStatus", `{"Bob":"sent"}`))

	first := newTestCampaign(store, newFakeMailer(), nil)
	first.Initialize(context.Background(), scenarioRoster)
	second := newTestCampaign(store, newFakeMailer(), nil)
	second.Initialize(context.Background(), scenarioRoster)

	assert.Equal(t, first.Candidates(), second.Candidates())
}

func TestPersistFailureKeepsSentMark(t *testing.T) {
	store := &brokenStore{MemoryStore: repository.NewMemoryStore(), setErr: errors.New("read-only")}
	mailer := newFakeMailer()
	rec := &eventRecorder{}
	c := newTestCampaign(store, mailer, rec.observe)
	c.Initialize(context.Background(), scenarioRoster)

	require.NoError(t, c.SendOne(context.Background(), scenarioRoster[0]))
	assert.Equal(t, model.StatusSent, c.StatusOf("Alice"))
	assert.Equal(t, []EventKind{EventStatusPersistFailed, EventMailSent}, rec.kinds())

	require.NoError(t, c.SendOne(context.Background(), scenarioRoster[0]))
	assert.Equal(t, []string{"Alice"}, mailer.sent())
}

func TestMarkSentKeepsEntriesWrittenElsewhere(t *testing.T) {
	store := repository.NewMemoryStore()
	c := newTestCampaign(store, newFakeMailer(), nil)
	c.Initialize(context.Background(), scenarioRoster)

	require.NoError(t, store.Set(context.Background(), "mailStatus", `{"Zed":"sent"}`))
	require.NoError(t, c.SendOne(context.Background(), scenarioRoster[0]))

	assert.Equal(t, map[string]string{"Alice": "sent", "Zed": "sent"}, persisted(t, store))
}
