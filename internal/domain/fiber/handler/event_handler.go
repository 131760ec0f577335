package handler

import (
	"sync"

	"github.com/fadilmartias/cv-screener/internal/usecase"
	"github.com/fadilmartias/cv-screener/internal/util"
	"github.com/gofiber/fiber/v2"
)

// EventFeed keeps the most recent controller events in a fixed-size ring.
type EventFeed struct {
	mu     sync.Mutex
	events []usecase.Event
	next   int
	full   bool
}

func NewEventFeed(capacity int) *EventFeed {
	if capacity <= 0 {
		capacity = 100
	}
	return &EventFeed{events: make([]usecase.Event, capacity)}
}

// Observe is a usecase.Observer.
func (f *EventFeed) Observe(e usecase.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events[f.next] = e
	f.next = (f.next + 1) % len(f.events)
	if f.next == 0 {
		f.full = true
	}
}

// Recent returns up to limit events, newest first. limit <= 0 means all.
func (f *EventFeed) Recent(limit int) []usecase.Event {
	f.mu.Lock()
	defer f.mu.Unlock()

	size := f.next
	if f.full {
		size = len(f.events)
	}
	if limit <= 0 || limit > size {
		limit = size
	}
	out := make([]usecase.Event, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (f.next - i + len(f.events)) % len(f.events)
		out = append(out, f.events[idx])
	}
	return out
}

type EventHandler struct {
	feed *EventFeed
}

func NewEventHandler(feed *EventFeed) *EventHandler {
	return &EventHandler{feed: feed}
}

func (h *EventHandler) RegisterRoutes(app fiber.Router) {
	app.Get("/events", h.List)
}

func (h *EventHandler) List(c *fiber.Ctx) error {
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get events",
		Data:    h.feed.Recent(c.QueryInt("limit", 0)),
	})
}
