package main

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/pubsub/v2"
	"github.com/illmade-knight/contact-sync/app"
	"github.com/illmade-knight/contact-sync/internal/clients"
	"github.com/illmade-knight/contact-sync/internal/config"
	"github.com/illmade-knight/contact-sync/internal/publish"
	firestorestorage "github.com/illmade-knight/contact-sync/internal/storage/firestore"
	"github.com/illmade-knight/contact-sync/internal/storage/sqlite"
	"github.com/illmade-knight/contact-sync/pkg/access"
	"github.com/illmade-knight/contact-sync/pkg/contacts"
	"github.com/illmade-knight/contact-sync/pkg/contactstore"
	"github.com/illmade-knight/contact-sync/pkg/syncengine"
)

// openStore instantiates the configured storage adapter. The returned
// function releases it.
func openStore(ctx context.Context, cfg *config.Config) (contactstore.Store, func(), error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		logger.Warn().Msg("Using the in-memory store; nothing is kept after exit")
		return contactstore.NewInMemoryStore(), func() {}, nil

	case config.BackendSQLite:
		store, err := sqlite.Open(ctx, cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil

	case config.BackendFirestore:
		fsClient, err := firestore.NewClient(ctx, cfg.Store.GCPProjectID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Firestore client: %w", err)
		}
		store := firestorestorage.NewContactStore(fsClient, cfg.Store.ContainerID)
		defaultContainer := cfg.Store.ContainerID
		if defaultContainer == "" {
			defaultContainer = contactstore.DefaultContainerID
		}
		if err := store.EnsureContainer(ctx, contactstore.Container{ID: defaultContainer, Name: "Default"}); err != nil {
			_ = fsClient.Close()
			return nil, nil, err
		}
		return store, func() { _ = fsClient.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func newSource(cfg *config.Config) contacts.Source {
	if cfg.Source.URL != "" {
		return clients.NewContactListClient(cfg.Source.URL, logger)
	}
	return contacts.NewFileSource(cfg.Source.File)
}

// buildApp assembles the application from configuration.
func buildApp(ctx context.Context, cfg *config.Config) (*app.App, func(), error) {
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	closers := []func(){closeStore}
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	logger.Info().Str("backend", cfg.Store.Backend).Msg("Contact store initialized")

	var publisher app.ReportPublisher
	if cfg.Publish.TopicID != "" {
		psClient, err := pubsub.NewClient(ctx, cfg.Store.GCPProjectID)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to create Pub/Sub client: %w", err)
		}
		p := publish.NewPubsubPublisher(psClient, cfg.Publish.TopicID, logger)
		closers = append(closers, func() { _ = psClient.Close() }, p.Stop)
		publisher = p
		logger.Info().Str("topic_id", cfg.Publish.TopicID).Msg("Report publishing enabled")
	}

	engine := syncengine.New(store, syncengine.Config{
		BatchSize:   cfg.Sync.BatchSize,
		ContainerID: cfg.Store.ContainerID,
	}, logger)
	gate := access.NewGate(store, logger)

	return app.New(engine, gate, newSource(cfg), publisher, logger), cleanup, nil
}
