// FILE: main.go
// This demo runs add-all, search and delete-all against the in-memory store,
// then shows a run where the store fails part way through.

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/illmade-knight/contact-sync/pkg/access"
	"github.com/illmade-knight/contact-sync/pkg/contacts"
	"github.com/illmade-knight/contact-sync/pkg/contactstore"
	"github.com/illmade-knight/contact-sync/pkg/syncengine"
	"github.com/rs/zerolog"
)

// flakyStore fails every save request after the first failAfter.
type flakyStore struct {
	*contactstore.InMemoryStore
	failAfter int
	calls     int
}

func (s *flakyStore) Execute(ctx context.Context, req *contactstore.SaveRequest) error {
	s.calls++
	if s.calls > s.failAfter {
		return errors.New("simulated store failure")
	}
	return s.InMemoryStore.Execute(ctx, req)
}

func generate(n int) []contacts.Contact {
	out := make([]contacts.Contact, n)
	for i := range out {
		out[i] = contacts.Contact{
			FirstName:   "Demo",
			LastName:    fmt.Sprintf("Person%03d", i),
			Email:       fmt.Sprintf("person%03d@example.com", i),
			PhoneNumber: 5550000 + i,
			ID:          fmt.Sprintf("demo-%03d", i),
		}
	}
	return out
}

func main() {
	log.Println("--- Starting Bulk Sync Demo ---")
	ctx := context.Background()
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	// 1. A fresh store that has never been asked for access
	store := contactstore.NewInMemoryStore()
	store.SetAuthorization(contactstore.AuthStatusNotDetermined, true)
	granted, err := access.NewGate(store, logger).EnsureAccess(ctx)
	if err != nil || !granted {
		log.Fatalf("access not granted: %v", err)
	}
	log.Println("✅ Access granted.")

	// 2. Add 250 contacts in batches of 100
	engine := syncengine.New(store, syncengine.Config{}, logger)
	added := engine.AddAll(ctx, generate(250))
	log.Printf("Add: %s after %d batches, store holds %d contacts",
		syncengine.DescribeAdd(added), added.BatchesApplied, store.Count())

	// 3. Search
	found := engine.Search(ctx)
	log.Printf("Search: %d contacts in %s", len(found.Handles), found.Elapsed)

	// 4. Delete everything
	deleted := engine.DeleteAll(ctx)
	log.Printf("Delete: %s (%d fetched), store holds %d contacts",
		syncengine.DescribeDelete(deleted), deleted.Fetched, store.Count())

	// 5. A store that fails on the second batch keeps the first one
	flaky := &flakyStore{InMemoryStore: contactstore.NewInMemoryStore(), failAfter: 1}
	partial := syncengine.New(flaky, syncengine.Config{}, logger).AddAll(ctx, generate(350))
	log.Printf("Flaky add: %s, %d save requests issued, store holds %d contacts",
		syncengine.DescribeAdd(partial), flaky.calls, flaky.Count())

	log.Println("\n--- Demo Complete ---")
}
