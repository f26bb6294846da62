package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"medreminder-backend/internal/model"
)

// Kind distinguishes the reminder variants a job can carry.
type Kind string

const (
	KindDose   Kind = "dose"
	KindRefill Kind = "refill"
)

// Job is one reminder to fan out to all registered subscriptions.
type Job struct {
	MedicationID string
	Kind         Kind
	Time         string // "HH:MM", set for dose reminders
}

// Payload is the JSON body delivered to push subscribers.
type Payload struct {
	Title        string `json:"title"`
	Body         string `json:"body"`
	MedicationID string `json:"medication_id"`
	Kind         Kind   `json:"kind"`
}

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool manages a pool of workers for sending reminders.
type WorkerPool struct {
	size    int
	jobs    chan Job
	db      *gorm.DB
	webpush *webpush.Options
	sender  NotificationSender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Job, size),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Worker %d started", id)
	for {
		select {
		case job := <-wp.jobs:
			log.Printf("Worker %d processing %s reminder for medication %s", id, job.Kind, job.MedicationID)
			wp.sendReminder(ctx, job)
		case <-ctx.Done():
			log.Printf("Worker %d shutting down", id)
			return
		}
	}
}

// Dispatch sends a job to the worker pool.
func (wp *WorkerPool) Dispatch(job Job) {
	wp.jobs <- job
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan Job {
	return wp.jobs
}

// sendReminder fetches subscriptions and fans the reminder out.
func (wp *WorkerPool) sendReminder(ctx context.Context, job Job) {
	var subscriptions []model.PushSubscription
	if err := wp.db.WithContext(ctx).Find(&subscriptions).Error; err != nil {
		log.Printf("Error fetching subscriptions for medication %s: %v", job.MedicationID, err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	var med model.Medication
	if err := wp.db.WithContext(ctx).First(&med, "id = ?", job.MedicationID).Error; err != nil {
		// The medication can vanish between dispatch and send (data reset).
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Medication %s no longer exists, dropping %s reminder", job.MedicationID, job.Kind)
			return
		}
		log.Printf("Error fetching medication %s: %v", job.MedicationID, err)
		return
	}

	payload := Payload{
		Title:        "Med Reminder",
		MedicationID: med.ID,
		Kind:         job.Kind,
	}
	switch job.Kind {
	case KindRefill:
		payload.Body = fmt.Sprintf("%s is running low: %d doses left", med.Name, med.CurrentSupply)
	default:
		payload.Body = fmt.Sprintf("Time to take %s (%s) at %s", med.Name, med.Dosage, job.Time)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error marshaling payload for medication %s: %v", med.ID, err)
		return
	}

	log.Printf("Sending %d notifications for medication %s", len(subscriptions), med.ID)
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, body)
	}
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
