// FILE: pkg/contactstore/inmem_store.go

package contactstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// DefaultContainerID is the container used by the in-memory store for adds
// that do not name one.
const DefaultContainerID = "local"

type storedContact struct {
	handle  Handle
	contact NativeContact
	seq     uint64
}

// InMemoryStore is a map-backed Store. Execute is all-or-nothing: every
// operation is validated before any of them is applied.
type InMemoryStore struct {
	sync.RWMutex
	status     AuthStatus
	grant      bool
	containers []Container
	contacts   map[string]storedContact
	seq        uint64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		status:     AuthStatusAuthorized,
		grant:      true,
		containers: []Container{{ID: DefaultContainerID, Name: "On My Device"}},
		contacts:   make(map[string]storedContact),
	}
}

// --- Authorization ---

// SetAuthorization sets the reported status and the answer RequestAccess gives.
// A granted request moves the status to authorized, a refused one to denied.
func (s *InMemoryStore) SetAuthorization(status AuthStatus, grant bool) {
	s.Lock()
	defer s.Unlock()
	s.status = status
	s.grant = grant
}

func (s *InMemoryStore) AuthorizationStatus(ctx context.Context) (AuthStatus, error) {
	s.RLock()
	defer s.RUnlock()
	return s.status, nil
}

func (s *InMemoryStore) RequestAccess(ctx context.Context) (bool, error) {
	s.Lock()
	defer s.Unlock()
	if s.grant {
		s.status = AuthStatusAuthorized
	} else {
		s.status = AuthStatusDenied
	}
	return s.grant, nil
}

// --- Containers ---

// AddContainer registers an additional container.
func (s *InMemoryStore) AddContainer(c Container) {
	s.Lock()
	defer s.Unlock()
	s.containers = append(s.containers, c)
}

func (s *InMemoryStore) Containers(ctx context.Context) ([]Container, error) {
	s.RLock()
	defer s.RUnlock()
	out := make([]Container, len(s.containers))
	copy(out, s.containers)
	return out, nil
}

// --- Contacts ---

func (s *InMemoryStore) FetchContacts(ctx context.Context, containerID string, keys []Key) ([]Handle, error) {
	s.RLock()
	defer s.RUnlock()
	if !s.hasContainer(containerID) {
		return nil, fmt.Errorf("container %s: %w", containerID, ErrNotFound)
	}

	matched := make([]storedContact, 0)
	for _, sc := range s.contacts {
		if sc.handle.ContainerID == containerID {
			matched = append(matched, sc)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].seq < matched[j].seq })

	handles := make([]Handle, 0, len(matched))
	for _, sc := range matched {
		h := sc.handle
		h.Fields = Project(sc.contact, keys)
		handles = append(handles, h)
	}
	return handles, nil
}

func (s *InMemoryStore) Execute(ctx context.Context, req *SaveRequest) error {
	if req == nil || req.Len() == 0 {
		return ErrEmptyRequest
	}
	s.Lock()
	defer s.Unlock()

	ops := req.Operations()
	for i, op := range ops {
		switch op.Kind {
		case OpAdd:
			if op.ContainerID != "" && !s.hasContainer(op.ContainerID) {
				return fmt.Errorf("operation %d: container %s: %w", i, op.ContainerID, ErrNotFound)
			}
		case OpDelete:
			if _, ok := s.contacts[op.Handle.ID]; !ok {
				return fmt.Errorf("operation %d: contact %s: %w", i, op.Handle.ID, ErrNotFound)
			}
		default:
			return fmt.Errorf("operation %d: unsupported kind %s", i, op.Kind)
		}
	}

	for _, op := range ops {
		switch op.Kind {
		case OpAdd:
			containerID := op.ContainerID
			if containerID == "" {
				containerID = DefaultContainerID
			}
			s.seq++
			id := uuid.NewString()
			s.contacts[id] = storedContact{
				handle:  Handle{ID: id, ContainerID: containerID},
				contact: op.Contact,
				seq:     s.seq,
			}
		case OpDelete:
			delete(s.contacts, op.Handle.ID)
		}
	}
	return nil
}

// Count returns the number of stored contacts across all containers.
func (s *InMemoryStore) Count() int {
	s.RLock()
	defer s.RUnlock()
	return len(s.contacts)
}

func (s *InMemoryStore) hasContainer(id string) bool {
	for _, c := range s.containers {
		if c.ID == id {
			return true
		}
	}
	return false
}
