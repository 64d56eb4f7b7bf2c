package service

import (
	"context"
	"fmt"
	"time"

	"github.com/workoutnotifier/workout-notifier/internal/config"
	"github.com/workoutnotifier/workout-notifier/internal/email"
	"github.com/workoutnotifier/workout-notifier/internal/logger"
	"github.com/workoutnotifier/workout-notifier/internal/model"
	"github.com/workoutnotifier/workout-notifier/internal/plan"
)

// Delivery describes a sent workout email.
type Delivery struct {
	To      string
	Subject string
	Day     model.Day
	SentAt  time.Time
}

// NotifierOptions configure a Notifier.
type NotifierOptions struct {
	Plan      *model.Plan
	Sender    email.Sender
	Recipient string
	// Location decides which weekday "today" is. Defaults to UTC.
	Location *time.Location
	// Now defaults to time.Now.
	Now func() time.Time
}

// Notifier composes today's workout email and hands it to a Sender.
type Notifier struct {
	plan      *model.Plan
	sender    email.Sender
	recipient string
	loc       *time.Location
	now       func() time.Time
	log       *logger.Logger
}

// NewNotifier creates a new Notifier.
func NewNotifier(opts NotifierOptions, log *logger.Logger) *Notifier {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Notifier{
		plan:      opts.Plan,
		sender:    opts.Sender,
		recipient: opts.Recipient,
		loc:       loc,
		now:       now,
		log:       log.WithComponent("notifier"),
	}
}

// Prepare loads everything a run needs from cfg: the plan, the sender and the
// timezone. Any failure here means the notification must not be attempted.
func Prepare(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Notifier, error) {
	loc, err := cfg.Schedule.Location()
	if err != nil {
		return nil, err
	}

	p, err := plan.Load(cfg.Plan.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load workout plan: %w", err)
	}
	log.Info().Int("days", len(p.Days)).Str("path", cfg.Plan.Path).Msg("workout plan loaded")

	sender, err := NewSender(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare %s sender: %w", cfg.Email.Provider, err)
	}

	return NewNotifier(NotifierOptions{
		Plan:      p,
		Sender:    sender,
		Recipient: cfg.Email.Recipient,
		Location:  loc,
	}, log), nil
}

// Compose builds the workout email for the weekday of at, in the notifier's timezone.
func (n *Notifier) Compose(at time.Time) (email.Message, model.Day, error) {
	at = at.In(n.loc)

	day, err := plan.ForDate(n.plan, at)
	if err != nil {
		return email.Message{}, model.Day{}, err
	}

	return email.Message{
		To:       n.recipient,
		Subject:  email.WorkoutSubject(day, at),
		HTMLBody: email.WorkoutEmailHTML(day),
		TextBody: email.WorkoutEmailText(day),
	}, day, nil
}

// Notify sends today's workout.
func (n *Notifier) Notify(ctx context.Context) (*Delivery, error) {
	now := n.now()

	msg, day, err := n.Compose(now)
	if err != nil {
		return nil, err
	}

	n.log.Info().
		Int("weekday_index", plan.WeekdayIndex(now.In(n.loc))).
		Str("title", day.Title).
		Str("to", msg.To).
		Msg("sending workout email")

	if err := n.sender.Send(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to send workout email: %w", err)
	}

	n.log.Info().Str("to", msg.To).Str("subject", msg.Subject).Msg("workout email sent")

	return &Delivery{
		To:      msg.To,
		Subject: msg.Subject,
		Day:     day,
		SentAt:  now,
	}, nil
}

// Run is Notify without the delivery details, usable as a job task.
func (n *Notifier) Run(ctx context.Context) error {
	_, err := n.Notify(ctx)
	return err
}
