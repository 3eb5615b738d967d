package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/welldanyogia/elite-estate/internal/changefeed"
	"github.com/welldanyogia/elite-estate/internal/models"
)

// DefaultSendTimeout bounds one notification attempt
const DefaultSendTimeout = 30 * time.Second

// sender is the part of Mailer the Notifier needs
type sender interface {
	Send(ctx context.Context, inquiry *models.Inquiry) error
}

// Notifier mails the owner about every inserted inquiry. Sending happens in
// the background and failures are only logged.
type Notifier struct {
	mailer  sender
	logger  *slog.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewNotifier creates a Notifier. A nil mailer turns it into a no-op.
func NewNotifier(mailer *Mailer, logger *slog.Logger) *Notifier {
	n := &Notifier{logger: logger, timeout: DefaultSendTimeout}
	if mailer != nil {
		n.mailer = mailer
	}
	if n.logger == nil {
		n.logger = slog.Default()
	}
	return n
}

// Enabled reports whether notifications are sent
func (n *Notifier) Enabled() bool {
	return n.mailer != nil
}

// Publish implements changefeed.Publisher
func (n *Notifier) Publish(_ context.Context, change changefeed.Change) {
	if n.mailer == nil || change.Type != changefeed.EventInsert || change.Record == nil {
		return
	}
	inquiry := *change.Record

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()

		if err := n.mailer.Send(ctx, &inquiry); err != nil {
			n.logger.Warn("owner notification failed",
				slog.String("inquiry_id", inquiry.ID),
				slog.Any("error", err),
			)
			return
		}
		n.logger.Info("owner notified", slog.String("inquiry_id", inquiry.ID))
	}()
}

// Wait blocks until in-flight notifications finish
func (n *Notifier) Wait() {
	n.wg.Wait()
}
