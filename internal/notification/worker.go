package notification

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"complaint-tracker-backend/internal/model"
)

// Event kinds dispatched to the pool.
const (
	EventOpened   = "opened"
	EventResolved = "resolved"
)

// Event is one complaint change worth pushing to subscribed staff.
type Event struct {
	ComplaintID int64
	Kind        string
}

// Sender defines the interface for sending a web push notification.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is the real Sender implementation using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool fans complaint events out to staff push subscriptions watching
// the complaint's ward. It implements workflow.Notifier.
type WorkerPool struct {
	size    int
	jobs    chan Event
	db      *gorm.DB
	webpush *webpush.Options
	sender  Sender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Event, size),
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
	log.Printf("Notification worker %d started", id)
	for {
		select {
		case ev := <-wp.jobs:
			log.Printf("Worker %d processing %s event for complaint %d", id, ev.Kind, ev.ComplaintID)
			wp.notify(ctx, ev)
		case <-ctx.Done():
			log.Printf("Notification worker %d shutting down", id)
			return
		}
	}
}

// ComplaintOpened queues a notification for a freshly submitted complaint.
func (wp *WorkerPool) ComplaintOpened(complaintID int64) {
	wp.jobs <- Event{ComplaintID: complaintID, Kind: EventOpened}
}

// ComplaintResolved queues a notification for a resolved complaint.
func (wp *WorkerPool) ComplaintResolved(complaintID int64) {
	wp.jobs <- Event{ComplaintID: complaintID, Kind: EventResolved}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan Event {
	return wp.jobs
}

// notify fetches the ward subscriptions for the complaint and pushes to each.
func (wp *WorkerPool) notify(ctx context.Context, ev Event) {
	var complaint model.Complaint
	if err := wp.db.WithContext(ctx).First(&complaint, ev.ComplaintID).Error; err != nil {
		log.Printf("Error fetching complaint %d: %v", ev.ComplaintID, err)
		return
	}

	var subscriptions []model.PushSubscription
	err := wp.db.WithContext(ctx).
		Joins("JOIN subscription_wards sw ON sw.endpoint = push_subscriptions.endpoint").
		Where("sw.ward = ?", complaint.Ward).
		Find(&subscriptions).Error
	if err != nil {
		log.Printf("Error fetching subscriptions for ward %s: %v", complaint.Ward, err)
		return
	}

	if len(subscriptions) == 0 {
		return
	}

	var message string
	switch ev.Kind {
	case EventResolved:
		message = fmt.Sprintf("Complaint %s in room %s (%s ward) has been resolved",
			complaint.TicketID, complaint.RoomNumber, complaint.Ward)
	default:
		message = fmt.Sprintf("New %s priority %s complaint %s in room %s (%s ward)",
			complaint.Priority, complaint.IssueType, complaint.TicketID, complaint.RoomNumber, complaint.Ward)
	}

	log.Printf("Sending %d notifications for complaint %s", len(subscriptions), complaint.TicketID)
	for _, sub := range subscriptions {
		wp.send(ctx, sub, []byte(message))
	}
}

// send pushes a single notification and prunes expired subscriptions.
func (wp *WorkerPool) send(ctx context.Context, sub model.PushSubscription, payload []byte) {
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

	if resp.StatusCode == http.StatusGone {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
