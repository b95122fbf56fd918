// Package syncengine applies contact lists to a contact store in fixed-size,
// atomic batches.
//
// Batches are applied one after another on the caller's goroutine. The first
// failing batch ends the run; batches that were already saved stay saved.
package syncengine

import (
	"context"
	"fmt"
	"time"

	"github.com/illmade-knight/contact-sync/pkg/batch"
	"github.com/illmade-knight/contact-sync/pkg/contacts"
	"github.com/illmade-knight/contact-sync/pkg/contactstore"
	"github.com/rs/zerolog"
)

// DefaultBatchSize bounds the number of contacts in one save request.
const DefaultBatchSize = 100

// Config holds Engine settings. A zero BatchSize selects DefaultBatchSize.
type Config struct {
	BatchSize   int
	ContainerID string
}

// Engine runs add-all, delete-all and search against a single store.
type Engine struct {
	store     contactstore.Store
	batchSize int
	container string
	logger    zerolog.Logger
}

// New creates an Engine. Engine performs no access checks of its own.
func New(store contactstore.Store, cfg Config, logger zerolog.Logger) *Engine {
	size := cfg.BatchSize
	if size == 0 {
		size = DefaultBatchSize
	}
	return &Engine{
		store:     store,
		batchSize: size,
		container: cfg.ContainerID,
		logger:    logger.With().Str("component", "syncengine").Logger(),
	}
}

func (e *Engine) BatchSize() int {
	return e.batchSize
}

// AddAll saves records to the store, one save request per batch.
func (e *Engine) AddAll(ctx context.Context, records []contacts.Contact) AddOutcome {
	batches, err := batch.Split(records, e.batchSize)
	if err != nil {
		return AddOutcome{Result: AddFailure, Message: err.Error(), Err: err}
	}

	for i, b := range batches {
		req := contactstore.NewSaveRequest()
		for _, c := range b {
			req.Add(contacts.ToNative(c), e.container)
		}

		if err := e.store.Execute(ctx, req); err != nil {
			e.logger.Warn().Err(err).Int("batch", i).Int("size", len(b)).Msg("Failed to save batch")
			return AddOutcome{Result: AddCouldNotAddContacts, BatchesApplied: i, Err: err}
		}
		e.logger.Debug().Int("batch", i).Int("size", len(b)).Msg("Saved batch")
	}

	return AddOutcome{Result: AddSuccess, BatchesApplied: len(batches)}
}

// DeleteAll removes every contact from every container of the store.
func (e *Engine) DeleteAll(ctx context.Context) DeleteOutcome {
	handles, _, err := e.fetchAll(ctx, nil)
	if err != nil {
		e.logger.Warn().Err(err).Msg("Failed to fetch contacts for deletion")
		return DeleteOutcome{Result: DeleteCouldNotFetchContacts, Err: err}
	}

	batches, err := batch.Split(handles, e.batchSize)
	if err != nil {
		return DeleteOutcome{Result: DeleteFailure, Message: err.Error(), Fetched: len(handles), Err: err}
	}

	for i, b := range batches {
		req := contactstore.NewSaveRequest()
		for _, h := range b {
			req.Delete(h)
		}

		if err := e.store.Execute(ctx, req); err != nil {
			e.logger.Warn().Err(err).Int("batch", i).Int("size", len(b)).Msg("Failed to delete batch")
			return DeleteOutcome{Result: DeleteCouldNotDeleteContacts, Fetched: len(handles), BatchesApplied: i, Err: err}
		}
		e.logger.Debug().Int("batch", i).Int("size", len(b)).Msg("Deleted batch")
	}

	return DeleteOutcome{Result: DeleteSuccess, Fetched: len(handles), BatchesApplied: len(batches)}
}

// Search fetches every contact in the store with its display fields and
// reports how long the fetch took.
func (e *Engine) Search(ctx context.Context) SearchOutcome {
	start := time.Now()
	keys := []contactstore.Key{contactstore.KeyGivenName, contactstore.KeyFamilyName, contactstore.KeyURLs}
	handles, failure, err := e.fetchAll(ctx, keys)
	elapsed := time.Since(start)
	if err != nil {
		return SearchOutcome{Elapsed: elapsed, Failure: failure, Err: err}
	}

	for _, h := range handles {
		if h.ID == "" {
			return SearchOutcome{Elapsed: elapsed, Failure: SearchNoIdentifier}
		}
	}
	return SearchOutcome{Handles: handles, Elapsed: elapsed}
}

// fetchAll accumulates the contacts of every container. keys nil fetches
// identifiers only.
func (e *Engine) fetchAll(ctx context.Context, keys []contactstore.Key) ([]contactstore.Handle, SearchError, error) {
	containers, err := e.store.Containers(ctx)
	if err != nil {
		return nil, SearchEnumerationError, fmt.Errorf("failed to enumerate containers: %w", err)
	}

	var handles []contactstore.Handle
	for _, c := range containers {
		found, err := e.store.FetchContacts(ctx, c.ID, keys)
		if err != nil {
			return nil, SearchFetchError, fmt.Errorf("failed to fetch contacts in container %s: %w", c.ID, err)
		}
		handles = append(handles, found...)
	}
	return handles, SearchOK, nil
}
