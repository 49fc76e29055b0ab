package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/booking-service/internal/events"
	"github.com/spec-kit/booking-service/internal/service"
)

const defaultQueueSize = 256

// NotificationWorker moves notification delivery off the request path.
// Events are queued by the dispatcher and handled by one goroutine; when the
// queue is full the event is dropped and logged.
type NotificationWorker struct {
	svc    *service.NotificationService
	logger *zap.Logger
	queue  chan events.Event
	wg     sync.WaitGroup
}

// NewNotificationWorker creates a worker with a bounded queue.
func NewNotificationWorker(svc *service.NotificationService, logger *zap.Logger, queueSize int) *NotificationWorker {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &NotificationWorker{svc: svc, logger: logger, queue: make(chan events.Event, queueSize)}
}

// StartNotificationWorker subscribes the worker to the dispatcher and runs it
// until ctx is cancelled.
func StartNotificationWorker(ctx context.Context, dispatcher events.Dispatcher, w *NotificationWorker) {
	if w == nil || w.svc == nil || dispatcher == nil {
		return
	}
	for _, eventType := range w.svc.EventTypes() {
		dispatcher.Subscribe(eventType, w.enqueue)
	}
	w.wg.Add(1)
	go w.run(ctx)
}

// Wait blocks until the worker drained its queue after ctx was cancelled.
func (w *NotificationWorker) Wait() {
	w.wg.Wait()
}

func (w *NotificationWorker) enqueue(_ context.Context, event events.Event) error {
	select {
	case w.queue <- event:
	default:
		w.logger.Warn("notification queue full; dropping event",
			zap.String("event_type", string(event.Type)),
			zap.String("reservation_id", event.ReservationID))
	}
	return nil
}

func (w *NotificationWorker) run(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case event := <-w.queue:
			w.handle(event)
		case <-ctx.Done():
			for {
				select {
				case event := <-w.queue:
					w.handle(event)
				default:
					return
				}
			}
		}
	}
}

func (w *NotificationWorker) handle(event events.Event) {
	if err := w.svc.Notify(context.Background(), event); err != nil {
		w.logger.Warn("notification failed", zap.String("event_id", event.ID), zap.Error(err))
	}
}
