package activitypub

import (
	"encoding/json"
	"time"

	"github.com/bookmarkhive/hive/db"
	"github.com/bookmarkhive/hive/domain"
	"github.com/bookmarkhive/hive/metrics"
	"github.com/charmbracelet/log"
)

// backoffMinutes is the retry schedule; attempts past its length reuse
// the last entry.
var backoffMinutes = []int{1, 5, 15, 60, 240, 1440}

const maxAttempts = 10

// Worker polls the queue and processes due messages. Each message runs
// to completion on one goroutine; unrecoverable failures are
// dead-lettered, everything else is retried with exponential backoff.
type Worker struct {
	db        *db.DB
	handlers  *Handlers
	interval  time.Duration
	collector *metrics.Collector
}

func NewWorker(database *db.DB, handlers *Handlers, interval time.Duration, collector *metrics.Collector) *Worker {
	return &Worker{db: database, handlers: handlers, interval: interval, collector: collector}
}

// Start launches the background polling loop.
func (w *Worker) Start() {
	log.Info("Starting federation delivery worker...", "interval", w.interval)

	ticker := time.NewTicker(w.interval)
	go func() {
		for range ticker.C {
			w.ProcessQueue()
		}
	}()
}

// ProcessQueue handles one batch of due messages (max 50 at a time).
func (w *Worker) ProcessQueue() {
	err, items := w.db.ReadDueMessages(50)
	if err != nil {
		log.Error("DeliveryWorker: failed to read queue", "err", err)
		return
	}

	if items == nil || len(*items) == 0 {
		return
	}

	log.Debug("DeliveryWorker: processing messages", "count", len(*items))

	for _, item := range *items {
		handleErr := w.Handle(&item)
		if handleErr == nil {
			w.db.DeleteMessage(item.Id)
			continue
		}

		if IsUnrecoverable(handleErr) {
			log.Warn("DeliveryWorker: dropping unrecoverable message",
				"kind", item.Kind, "id", item.Id, "err", handleErr)
			w.collector.RecordDeadLetter()
			w.db.DeleteMessage(item.Id)
			continue
		}

		item.Attempts++
		if item.Attempts >= maxAttempts {
			log.Warn("DeliveryWorker: giving up on message",
				"kind", item.Kind, "id", item.Id, "attempts", item.Attempts)
			w.collector.RecordDeadLetter()
			w.db.DeleteMessage(item.Id)
			continue
		}

		backoff := NextBackoff(item.Attempts)
		item.NextRetryAt = time.Now().Add(backoff)
		log.Info("DeliveryWorker: message failed, scheduling retry",
			"kind", item.Kind, "id", item.Id, "attempt", item.Attempts, "retryIn", backoff, "err", handleErr)
		w.db.UpdateMessageAttempt(item.Id, item.Attempts, item.NextRetryAt)
	}
}

// Handle decodes a queue envelope and routes it to its handler.
func (w *Worker) Handle(item *domain.QueueMessage) error {
	switch item.Kind {
	case KindSendFollow:
		var msg SendFollowMessage
		if err := json.Unmarshal([]byte(item.Body), &msg); err != nil {
			return Unrecoverable(err)
		}
		return w.handlers.HandleSendFollow(msg)
	case KindSend:
		var msg SendMessage
		if err := json.Unmarshal([]byte(item.Body), &msg); err != nil {
			return Unrecoverable(err)
		}
		return w.handlers.HandleSend(msg)
	case KindReceiveFollow:
		var msg ReceiveFollowMessage
		if err := json.Unmarshal([]byte(item.Body), &msg); err != nil {
			return Unrecoverable(err)
		}
		return w.handlers.HandleReceiveFollow(msg)
	default:
		return Unrecoverablef("unknown message kind %q", item.Kind)
	}
}

// NextBackoff maps an attempt count to its retry delay.
func NextBackoff(attempts int) time.Duration {
	idx := attempts - 1
	if idx >= len(backoffMinutes) {
		idx = len(backoffMinutes) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return time.Duration(backoffMinutes[idx]) * time.Minute
}
