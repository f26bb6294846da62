package reminder

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/patrickmn/go-cache"

	"medreminder-backend/config"
	"medreminder-backend/internal/notification"
	"medreminder-backend/internal/schedule"
	"medreminder-backend/internal/store"
)

// Service periodically evaluates the medication catalog and dispatches due
// reminders to the notification worker pool.
type Service struct {
	cfg        *config.Config
	store      store.Store
	workerPool *notification.WorkerPool
	loc        *time.Location

	// sent suppresses duplicate dispatches: one dose reminder per
	// medication+day+time, one refill alert per medication+day.
	sent     *cache.Cache
	lastTick time.Time
}

// NewService creates and initializes a new reminder service.
func NewService(cfg *config.Config, s store.Store) *Service {
	loc, err := time.LoadLocation(cfg.Reminder.Timezone)
	if err != nil {
		log.Printf("Warning: invalid timezone %q: %v. Falling back to local time.", cfg.Reminder.Timezone, err)
		loc = time.Local
	}

	webpushOptions := webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}

	return &Service{
		cfg:        cfg,
		store:      s,
		workerPool: notification.NewWorkerPool(cfg.WorkerPool.Size, s.DB(), &webpushOptions),
		loc:        loc,
		sent:       cache.New(24*time.Hour, time.Hour),
	}
}

// Jobs returns the worker pool's jobs channel for testing.
func (s *Service) Jobs() chan notification.Job {
	return s.workerPool.Jobs()
}

// Run starts the reminder loop.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Reminder.Enabled {
		log.Println("Reminder scheduler is disabled. Not starting.")
		return
	}
	log.Println("Starting reminder scheduler...")

	s.workerPool.Start(ctx)

	s.Tick(ctx, time.Now())

	timer := time.NewTimer(s.cfg.Reminder.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Reminder scheduler shutting down.")
			return
		case <-timer.C:
			s.Tick(ctx, time.Now())
			timer.Reset(s.cfg.Reminder.Interval)
		}
	}
}

// Tick evaluates the catalog once and dispatches any reminders that came due
// since the previous tick. Overlapping or repeated ticks are harmless: the
// sent cache drops duplicates.
func (s *Service) Tick(ctx context.Context, now time.Time) {
	now = now.In(s.loc)
	from := s.lastTick
	if from.IsZero() {
		from = now.Add(-s.cfg.Reminder.Interval)
	}
	s.lastTick = now

	meds, err := s.store.ListMedications(ctx)
	if err != nil {
		log.Printf("Error loading medications: %v", err)
		return
	}

	active, issues := schedule.FilterActive(meds, now)
	for _, issue := range issues {
		log.Printf("Skipping medication %s: %v", issue.MedicationID, issue.Err)
	}

	day := now.Format("2006-01-02")
	for _, med := range active {
		if med.ReminderEnabled {
			for _, hm := range schedule.DueTimes(med, from, now) {
				key := fmt.Sprintf("dose|%s|%s|%s", med.ID, day, hm)
				if _, dup := s.sent.Get(key); dup {
					continue
				}
				s.sent.Set(key, struct{}{}, cache.DefaultExpiration)
				s.workerPool.Dispatch(notification.Job{
					MedicationID: med.ID,
					Kind:         notification.KindDose,
					Time:         hm,
				})
			}
		}

		if med.RefillReminder && med.RefillAt > 0 && med.CurrentSupply <= med.RefillAt {
			key := fmt.Sprintf("refill|%s|%s", med.ID, day)
			if _, dup := s.sent.Get(key); dup {
				continue
			}
			s.sent.Set(key, struct{}{}, cache.DefaultExpiration)
			s.workerPool.Dispatch(notification.Job{
				MedicationID: med.ID,
				Kind:         notification.KindRefill,
			})
		}
	}
}
