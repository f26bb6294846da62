package api

import (
	"log"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/patrickmn/go-cache"

	"medreminder-backend/config"
	"medreminder-backend/internal/store"
)

// resetTokenTTL bounds how long a clear-all confirmation token stays valid.
const resetTokenTTL = 2 * time.Minute

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store       store.Store
	webpush     *webpush.Options
	cfg         *config.Config
	loc         *time.Location
	resetTokens *cache.Cache
	pageCache   *cache.Cache
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, cfg *config.Config, webpushOptions *webpush.Options, pageCache *cache.Cache) *Handler {
	loc := time.Local
	if cfg != nil && cfg.Reminder.Timezone != "" {
		l, err := time.LoadLocation(cfg.Reminder.Timezone)
		if err != nil {
			log.Printf("Warning: invalid timezone %q: %v. Falling back to local time.", cfg.Reminder.Timezone, err)
		} else {
			loc = l
		}
	}

	return &Handler{
		store:       s,
		webpush:     webpushOptions,
		cfg:         cfg,
		loc:         loc,
		resetTokens: cache.New(resetTokenTTL, time.Minute),
		pageCache:   pageCache,
	}
}

// dayBounds returns the [start, end) interval of t's calendar day in h's timezone.
func (h *Handler) dayBounds(t time.Time) (time.Time, time.Time) {
	t = t.In(h.loc)
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, h.loc)
	return start, start.AddDate(0, 0, 1)
}
