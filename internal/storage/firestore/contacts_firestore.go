// Package firestore provides a contact store implementation using Google Cloud Firestore.
package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/illmade-knight/contact-sync/pkg/contactstore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// labeledValueDocument is the private struct for Firestore marshalling.
type labeledValueDocument struct {
	Label string `firestore:"label"`
	Value string `firestore:"value"`
}

// contactDocument is the private struct for Firestore marshalling.
type contactDocument struct {
	ContainerID string                 `firestore:"containerId"`
	GivenName   string                 `firestore:"givenName"`
	FamilyName  string                 `firestore:"familyName"`
	Emails      []labeledValueDocument `firestore:"emails"`
	Phones      []labeledValueDocument `firestore:"phones"`
	URLs        []labeledValueDocument `firestore:"urls"`
	CreatedAt   time.Time              `firestore:"createdAt"`
}

// containerDocument is the private struct for Firestore marshalling.
type containerDocument struct {
	Name string `firestore:"name"`
}

// fieldPaths maps fetch keys onto document fields.
var fieldPaths = map[contactstore.Key]string{
	contactstore.KeyGivenName:  "givenName",
	contactstore.KeyFamilyName: "familyName",
	contactstore.KeyEmails:     "emails",
	contactstore.KeyPhones:     "phones",
	contactstore.KeyURLs:       "urls",
}

// ContactStore is a concrete implementation of the contactstore.Store interface using Firestore.
// Server credentials are the only authorization, so access is always granted.
type ContactStore struct {
	client               *firestore.Client
	containersCollection *firestore.CollectionRef
	contactsCollection   *firestore.CollectionRef
	defaultContainerID   string
}

// NewContactStore creates a new Firestore-backed contact store. Adds that do not
// name a container go to defaultContainerID.
func NewContactStore(client *firestore.Client, defaultContainerID string) *ContactStore {
	if defaultContainerID == "" {
		defaultContainerID = contactstore.DefaultContainerID
	}
	return &ContactStore{
		client:               client,
		containersCollection: client.Collection("containers"),
		contactsCollection:   client.Collection("contacts"),
		defaultContainerID:   defaultContainerID,
	}
}

// --- Authorization ---

func (s *ContactStore) AuthorizationStatus(ctx context.Context) (contactstore.AuthStatus, error) {
	return contactstore.AuthStatusAuthorized, nil
}

func (s *ContactStore) RequestAccess(ctx context.Context) (bool, error) {
	return true, nil
}

// --- Containers ---

// EnsureContainer creates the container document if it does not exist yet.
func (s *ContactStore) EnsureContainer(ctx context.Context, c contactstore.Container) error {
	_, err := s.containersCollection.Doc(c.ID).Create(ctx, containerDocument{Name: c.Name})
	if err != nil && status.Code(err) != codes.AlreadyExists {
		return fmt.Errorf("failed to create container %s: %w", c.ID, err)
	}
	return nil
}

func (s *ContactStore) Containers(ctx context.Context) ([]contactstore.Container, error) {
	iter := s.containersCollection.Documents(ctx)
	defer iter.Stop()

	var results []contactstore.Container
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var cd containerDocument
		if err := doc.DataTo(&cd); err != nil {
			return nil, err
		}
		results = append(results, contactstore.Container{ID: doc.Ref.ID, Name: cd.Name})
	}
	return results, nil
}

// --- Contacts ---

func (s *ContactStore) FetchContacts(ctx context.Context, containerID string, keys []contactstore.Key) ([]contactstore.Handle, error) {
	if _, err := s.containersCollection.Doc(containerID).Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("container %s: %w", containerID, contactstore.ErrNotFound)
		}
		return nil, err
	}

	paths := make([]string, 0, len(keys))
	for _, k := range keys {
		if p, ok := fieldPaths[k]; ok {
			paths = append(paths, p)
		}
	}
	// Select with no paths returns references only.
	iter := s.contactsCollection.Where("containerId", "==", containerID).Select(paths...).Documents(ctx)
	return processContactIterator(iter, containerID, keys)
}

// Execute applies req in a single Firestore transaction.
func (s *ContactStore) Execute(ctx context.Context, req *contactstore.SaveRequest) error {
	if req == nil || req.Len() == 0 {
		return contactstore.ErrEmptyRequest
	}
	ops := req.Operations()
	now := time.Now()

	return s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		// Firestore requires every read before the first write.
		checkedContainers := make(map[string]bool)
		for i, op := range ops {
			switch op.Kind {
			case contactstore.OpAdd:
				containerID := s.containerFor(op)
				if checkedContainers[containerID] {
					continue
				}
				if _, err := tx.Get(s.containersCollection.Doc(containerID)); err != nil {
					return notFoundOr(err, "operation %d: container %s", i, containerID)
				}
				checkedContainers[containerID] = true
			case contactstore.OpDelete:
				if _, err := tx.Get(s.contactsCollection.Doc(op.Handle.ID)); err != nil {
					return notFoundOr(err, "operation %d: contact %s", i, op.Handle.ID)
				}
			default:
				return fmt.Errorf("operation %d: unsupported kind %s", i, op.Kind)
			}
		}

		for _, op := range ops {
			switch op.Kind {
			case contactstore.OpAdd:
				doc := toDocument(op.Contact, s.containerFor(op), now)
				if err := tx.Create(s.contactsCollection.NewDoc(), doc); err != nil {
					return err
				}
			case contactstore.OpDelete:
				if err := tx.Delete(s.contactsCollection.Doc(op.Handle.ID)); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (s *ContactStore) containerFor(op contactstore.Operation) string {
	if op.ContainerID == "" {
		return s.defaultContainerID
	}
	return op.ContainerID
}

// --- Helper Functions ---

func notFoundOr(err error, format string, args ...any) error {
	what := fmt.Sprintf(format, args...)
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("%s: %w", what, contactstore.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func toLabeled(values []contactstore.LabeledValue) []labeledValueDocument {
	out := make([]labeledValueDocument, 0, len(values))
	for _, v := range values {
		out = append(out, labeledValueDocument{Label: v.Label, Value: v.Value})
	}
	return out
}

func fromLabeled(values []labeledValueDocument) []contactstore.LabeledValue {
	if len(values) == 0 {
		return nil
	}
	out := make([]contactstore.LabeledValue, 0, len(values))
	for _, v := range values {
		out = append(out, contactstore.LabeledValue{Label: v.Label, Value: v.Value})
	}
	return out
}

func toDocument(c contactstore.NativeContact, containerID string, createdAt time.Time) contactDocument {
	return contactDocument{
		ContainerID: containerID,
		GivenName:   c.GivenName,
		FamilyName:  c.FamilyName,
		Emails:      toLabeled(c.Emails),
		Phones:      toLabeled(c.Phones),
		URLs:        toLabeled(c.URLs),
		CreatedAt:   createdAt,
	}
}

func processContactIterator(iter *firestore.DocumentIterator, containerID string, keys []contactstore.Key) ([]contactstore.Handle, error) {
	defer iter.Stop()
	results := make([]contactstore.Handle, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		var cd contactDocument
		if err := doc.DataTo(&cd); err != nil {
			return nil, err
		}
		native := contactstore.NativeContact{
			GivenName:  cd.GivenName,
			FamilyName: cd.FamilyName,
			Emails:     fromLabeled(cd.Emails),
			Phones:     fromLabeled(cd.Phones),
			URLs:       fromLabeled(cd.URLs),
		}
		results = append(results, contactstore.Handle{
			ID:          doc.Ref.ID,
			ContainerID: containerID,
			Fields:      contactstore.Project(native, keys),
		})
	}
	return results, nil
}
