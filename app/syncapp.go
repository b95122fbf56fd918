// Package app provides the central orchestrator for the contact-sync application.
package app

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/illmade-knight/contact-sync/pkg/access"
	"github.com/illmade-knight/contact-sync/pkg/contacts"
	"github.com/illmade-knight/contact-sync/pkg/syncengine"
	"github.com/rs/zerolog"
)

var (
	// ErrOperationInFlight is returned when an add or delete is requested while another one is running.
	ErrOperationInFlight = errors.New("a sync operation is already running")
	// ErrAccessDenied is returned when the contact store refused access.
	ErrAccessDenied = errors.New("contact store access was not granted")
)

// Operation names a front-end action.
type Operation string

const (
	OperationAdd    Operation = "add"
	OperationDelete Operation = "delete"
	OperationSearch Operation = "search"
)

// Report is what the front end displays after an operation finishes.
type Report struct {
	RunID       uuid.UUID     `json:"runId"`
	Operation   Operation     `json:"operation"`
	Result      string        `json:"result"`
	Description string        `json:"description"`
	Success     bool          `json:"success"`
	Count       int           `json:"count"`
	Started     time.Time     `json:"started"`
	Finished    time.Time     `json:"finished"`
	Elapsed     time.Duration `json:"elapsed"`
}

// ReportPublisher defines the interface for a component that announces finished reports.
type ReportPublisher interface {
	Publish(ctx context.Context, report Report) error
}

// App holds the services the front end drives.
type App struct {
	Engine    *syncengine.Engine
	Gate      *access.Gate
	Source    contacts.Source
	Publisher ReportPublisher
	Logger    zerolog.Logger

	slot chan struct{}
}

// New creates a new, fully initialized App. publisher may be nil.
func New(
	engine *syncengine.Engine,
	gate *access.Gate,
	source contacts.Source,
	publisher ReportPublisher,
	logger zerolog.Logger,
) *App {
	return &App{
		Engine:    engine,
		Gate:      gate,
		Source:    source,
		Publisher: publisher,
		Logger:    logger,
		slot:      make(chan struct{}, 1),
	}
}

// AddAll checks access, loads the contact list and saves it to the store.
func (a *App) AddAll(ctx context.Context) (Report, error) {
	release, err := a.acquire()
	if err != nil {
		return Report{}, err
	}
	defer release()

	if err := a.ensureAccess(ctx); err != nil {
		return Report{}, err
	}

	records := contacts.LoadOrEmpty(ctx, a.Source, a.Logger)
	report, logger := a.begin(OperationAdd)
	logger.Info().Int("contacts", len(records)).Msg("Start")

	outcome := a.Engine.AddAll(ctx, records)

	report.Result = outcome.Result.String()
	report.Description = syncengine.DescribeAdd(outcome)
	report.Success = outcome.Success()
	report.Count = len(records)
	a.finish(ctx, logger, &report, outcome.Err)
	return report, nil
}

// DeleteAll checks access and removes every contact from the store.
func (a *App) DeleteAll(ctx context.Context) (Report, error) {
	release, err := a.acquire()
	if err != nil {
		return Report{}, err
	}
	defer release()

	if err := a.ensureAccess(ctx); err != nil {
		return Report{}, err
	}

	report, logger := a.begin(OperationDelete)
	logger.Info().Msg("Deleting")

	outcome := a.Engine.DeleteAll(ctx)

	report.Result = outcome.Result.String()
	report.Description = syncengine.DescribeDelete(outcome)
	report.Success = outcome.Success()
	report.Count = outcome.Fetched
	a.finish(ctx, logger, &report, outcome.Err)
	return report, nil
}

// Search checks access and counts the contacts currently in the store.
// It is read-only and does not take the in-flight slot.
func (a *App) Search(ctx context.Context) (Report, error) {
	if err := a.ensureAccess(ctx); err != nil {
		return Report{}, err
	}

	report, logger := a.begin(OperationSearch)
	outcome := a.Engine.Search(ctx)

	report.Success = outcome.Success()
	report.Count = len(outcome.Handles)
	if outcome.Success() {
		report.Result = "success"
		report.Description = "Fetched contacts"
	} else {
		report.Result = "failure"
		report.Description = syncengine.DescribeSearchError(outcome.Failure)
	}
	a.finish(ctx, logger, &report, outcome.Err)
	return report, nil
}

// acquire takes the single in-flight slot without blocking.
func (a *App) acquire() (func(), error) {
	select {
	case a.slot <- struct{}{}:
		return func() { <-a.slot }, nil
	default:
		return nil, ErrOperationInFlight
	}
}

func (a *App) ensureAccess(ctx context.Context) error {
	granted, err := a.Gate.EnsureAccess(ctx)
	if err != nil {
		a.Logger.Error().Err(err).Msg("Access check failed")
		return errors.Join(ErrAccessDenied, err)
	}
	if !granted {
		a.Logger.Warn().Msg("Please grant contact access in device settings")
		return ErrAccessDenied
	}
	return nil
}

func (a *App) begin(op Operation) (Report, zerolog.Logger) {
	report := Report{
		RunID:     uuid.New(),
		Operation: op,
		Started:   time.Now(),
	}
	logger := a.Logger.With().
		Str("operation", string(op)).
		Stringer("run_id", report.RunID).
		Logger()
	return report, logger
}

func (a *App) finish(ctx context.Context, logger zerolog.Logger, report *Report, cause error) {
	report.Finished = time.Now()
	report.Elapsed = report.Finished.Sub(report.Started)

	event := logger.Info()
	if !report.Success {
		event = logger.Warn().Err(cause)
	}
	event.Str("result", report.Result).
		Int("count", report.Count).
		Dur("elapsed", report.Elapsed).
		Msg(report.Description)

	if a.Publisher == nil {
		return
	}
	if err := a.Publisher.Publish(ctx, *report); err != nil {
		logger.Error().Err(err).Msg("Failed to publish report")
	}
}
