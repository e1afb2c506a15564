package fanout

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cuongbtq/hirenest-be/internal/api/domain"
	"github.com/cuongbtq/hirenest-be/internal/api/metrics"
	"github.com/cuongbtq/hirenest-be/internal/api/model"
	"github.com/cuongbtq/hirenest-be/internal/api/notification"
	"github.com/cuongbtq/hirenest-be/internal/mail"
)

// Branch names used in logs and metrics
const (
	BranchNotification = "notification"
	BranchBroadcast    = "broadcast"
	BranchEmail        = "email"
)

// Recorder persists admin notifications
type Recorder interface {
	Record(ctx context.Context, in notification.RecordInput) (*model.Notification, error)
}

// Broadcaster pushes realtime events
type Broadcaster interface {
	Broadcast(event string, payload any, room string) error
}

// MailQueue accepts email for asynchronous delivery
type MailQueue interface {
	Enqueue(ctx context.Context, msg mail.Message) error
}

// Policies holds the retry policy of each branch
type Policies struct {
	Notification RetryPolicy
	Broadcast    RetryPolicy
	Email        RetryPolicy
}

// Dispatcher turns events into independent side effects. Each branch runs
// in its own goroutine, so a failing branch never holds back the others
// or the request that emitted the event.
type Dispatcher struct {
	recorder    Recorder
	broadcaster Broadcaster
	mailer      MailQueue
	policies    Policies
	branding    mail.Branding
	logger      *slog.Logger
	now         func() time.Time

	wg sync.WaitGroup
}

func NewDispatcher(
	recorder Recorder,
	broadcaster Broadcaster,
	mailer MailQueue,
	policies Policies,
	branding mail.Branding,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		recorder:    recorder,
		broadcaster: broadcaster,
		mailer:      mailer,
		policies:    policies,
		branding:    branding,
		logger:      logger,
		now:         time.Now,
	}
}

// Emit schedules the side effects of ev and returns immediately. The
// branches outlive the cancellation of ctx.
func (d *Dispatcher) Emit(ctx context.Context, ev Event) {
	eventType := ev.Type()
	metrics.RecordEvent(eventType)

	plan, err := ev.plan(planContext{branding: d.branding, now: d.now()})
	if err != nil {
		// what did render still goes out
		d.logger.Error("Failed to render event email",
			slog.String("event_type", eventType),
			slog.Any("error", err),
		)
	}

	ctx = context.WithoutCancel(ctx)
	logger := d.logger.With(slog.String("event_type", eventType))

	if plan.Notification != nil && d.recorder != nil {
		in := *plan.Notification
		d.spawn(logger, BranchNotification, func() error {
			return d.policies.Notification.Do(ctx, func(ctx context.Context) error {
				_, err := d.recorder.Record(ctx, in)
				return err
			})
		})
	}

	if len(plan.Broadcasts) > 0 && d.broadcaster != nil {
		broadcasts := plan.Broadcasts
		// one goroutine keeps emission order
		d.spawn(logger, BranchBroadcast, func() error {
			var firstErr error
			for _, b := range broadcasts {
				err := d.policies.Broadcast.Do(ctx, func(ctx context.Context) error {
					return d.broadcaster.Broadcast(b.Event, b.Payload, b.Room)
				})
				if err != nil && firstErr == nil {
					firstErr = fmt.Errorf("broadcast %s to %q: %w", b.Event, b.Room, err)
				}
			}
			return firstErr
		})
	}

	if d.mailer != nil {
		for _, msg := range plan.Emails {
			d.spawn(logger.With(slog.String("subject", msg.Subject)), BranchEmail, func() error {
				return d.policies.Email.Do(ctx, func(ctx context.Context) error {
					return d.mailer.Enqueue(ctx, msg)
				})
			})
		}
	}
}

// Feedback records and forwards feedback sent over the realtime channel
func (d *Dispatcher) Feedback(ctx context.Context, from domain.Principal, message string) {
	d.Emit(ctx, FeedbackReceived{From: from, Message: message})
}

// Wait blocks until every scheduled branch has finished
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) spawn(logger *slog.Logger, branch string, fn func() error) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				metrics.RecordBranch(branch, fmt.Errorf("panic: %v", r))
				logger.Error("Side effect branch panicked",
					slog.String("branch", branch),
					slog.Any("panic", r),
				)
			}
		}()

		err := fn()
		metrics.RecordBranch(branch, err)
		if err != nil {
			logger.Warn("Side effect branch failed",
				slog.String("branch", branch),
				slog.Any("error", err),
			)
		}
	}()
}
