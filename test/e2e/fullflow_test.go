//go:build integration

package e2e_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"github.com/google/uuid"
	"github.com/illmade-knight/contact-sync/app"
	"github.com/illmade-knight/contact-sync/internal/publish"
	fst "github.com/illmade-knight/contact-sync/internal/storage/firestore"
	"github.com/illmade-knight/contact-sync/pkg/access"
	"github.com/illmade-knight/contact-sync/pkg/contacts"
	"github.com/illmade-knight/contact-sync/pkg/contactstore"
	"github.com/illmade-knight/contact-sync/pkg/syncengine"
	"github.com/illmade-knight/go-test/emulators"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource []contacts.Contact

func (s staticSource) Load(ctx context.Context) ([]contacts.Contact, error) {
	return s, nil
}

func TestFullApplicationFlow(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	t.Cleanup(cancel)
	logger := zerolog.New(zerolog.NewTestWriter(t))
	const projectID = "test-project"
	runID := uuid.NewString()

	// 1. SETUP: Start Emulators
	pubsubConn := emulators.SetupPubsubEmulator(t, ctx, emulators.GetDefaultPubsubConfig(projectID))
	psClient, err := pubsub.NewClient(ctx, projectID, pubsubConn.ClientOptions...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = psClient.Close() })

	firestoreConn := emulators.SetupFirestoreEmulator(t, ctx, emulators.GetDefaultFirestoreConfig(projectID))
	fsClient, err := firestore.NewClient(ctx, projectID, firestoreConn.ClientOptions...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = fsClient.Close() })

	// 2. ARRANGE: Storage, publisher and the application
	store := fst.NewContactStore(fsClient, "")
	require.NoError(t, store.EnsureContainer(ctx, contactstore.Container{ID: contactstore.DefaultContainerID, Name: "Default"}))

	topicID := "reports-" + runID
	subName := createPubsubResources(t, ctx, psClient, projectID, topicID)
	publisher := publish.NewPubsubPublisher(psClient, topicID, logger)
	t.Cleanup(publisher.Stop)

	records := make(staticSource, 150)
	for i := range records {
		records[i] = contacts.Contact{
			FirstName:   "E2E",
			LastName:    fmt.Sprint(i),
			Email:       fmt.Sprintf("e2e%d@example.com", i),
			PhoneNumber: 5550000 + i,
			ID:          fmt.Sprintf("e2e-%d", i),
		}
	}
	engine := syncengine.New(store, syncengine.Config{}, logger)
	application := app.New(engine, access.NewGate(store, logger), records, publisher, logger)

	// 3. ACT: add, check, delete
	added, err := application.AddAll(ctx)
	require.NoError(t, err)
	require.True(t, added.Success, added.Description)

	found := engine.Search(ctx)
	require.True(t, found.Success())
	assert.Len(t, found.Handles, 150)

	deleted, err := application.DeleteAll(ctx)
	require.NoError(t, err)
	require.True(t, deleted.Success, deleted.Description)
	assert.Equal(t, 150, deleted.Count)

	found = engine.Search(ctx)
	require.True(t, found.Success())
	assert.Empty(t, found.Handles)

	// 4. ASSERT: both reports were published
	reports := make(chan app.Report, 4)
	subCtx, subCancel := context.WithCancel(ctx)
	defer subCancel()
	go func() {
		_ = psClient.Subscriber(subName).Receive(subCtx, func(ctx context.Context, msg *pubsub.Message) {
			msg.Ack()
			var r app.Report
			if json.Unmarshal(msg.Data, &r) == nil {
				reports <- r
			}
		})
	}()

	seen := map[app.Operation]bool{}
	for len(seen) < 2 {
		select {
		case r := <-reports:
			seen[r.Operation] = true
		case <-time.After(15 * time.Second):
			t.Fatalf("Test timed out: only saw reports for %v", seen)
		}
	}
	t.Log("✅ SUCCESS: Contacts were added to and deleted from Firestore and both reports were published.")
}

func createPubsubResources(t *testing.T, ctx context.Context, client *pubsub.Client, projectID, topicID string) string {
	t.Helper()
	topicName := fmt.Sprintf("projects/%s/topics/%s", projectID, topicID)
	_, err := client.TopicAdminClient.CreateTopic(ctx, &pubsubpb.Topic{Name: topicName})
	require.NoError(t, err)

	subName := fmt.Sprintf("projects/%s/subscriptions/%s-sub", projectID, topicID)
	_, err = client.SubscriptionAdminClient.CreateSubscription(ctx, &pubsubpb.Subscription{
		Name:  subName,
		Topic: topicName,
	})
	require.NoError(t, err)
	return subName
}
