package queue_publisher

import (
	"context"

	q "github.com/iliyamo/cinematick/internal/queue"
)

// QueueNotifier adapts the package's publish functions to the
// booking.Notifier interface.  It carries no state; every publish
// opens its own short-lived connection so a broker restart never
// wedges the service.
type QueueNotifier struct{}

// NewQueueNotifier returns a notifier publishing to RabbitMQ.
func NewQueueNotifier() *QueueNotifier { return &QueueNotifier{} }

func (n *QueueNotifier) BookingConfirmed(ctx context.Context, ev q.BookingConfirmedEvent) error {
	return PublishBookingConfirmed(ctx, ev)
}

func (n *QueueNotifier) BookingCancelled(ctx context.Context, ev q.BookingCancelledEvent) error {
	return PublishBookingCancelled(ctx, ev)
}
