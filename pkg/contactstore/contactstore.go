// FILE: pkg/contactstore/store.go

// Package contactstore defines the contract of an external contacts database
// and ships an in-memory implementation of it.
package contactstore

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a request references a contact or container that does not exist.
	ErrNotFound = errors.New("contactstore: not found")
	// ErrEmptyRequest is returned when Execute is given a request with no operations.
	ErrEmptyRequest = errors.New("contactstore: empty save request")
)

// Authorizer reports and requests permission to use the store.
type Authorizer interface {
	AuthorizationStatus(ctx context.Context) (AuthStatus, error)
	// RequestAccess blocks until the permission decision is known.
	RequestAccess(ctx context.Context) (bool, error)
}

// Store is the interface for an external contact store.
type Store interface {
	Authorizer
	Containers(ctx context.Context) ([]Container, error)
	FetchContacts(ctx context.Context, containerID string, keys []Key) ([]Handle, error)
	// Execute applies every operation in req or none of them.
	Execute(ctx context.Context, req *SaveRequest) error
}

// OpKind is the kind of a single save request operation.
type OpKind int

const (
	OpAdd OpKind = iota + 1
	OpDelete
)

func (k OpKind) String() string {
	switch k {
	case OpAdd:
		return "add"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Operation is one entry of a SaveRequest.
type Operation struct {
	Kind        OpKind
	Contact     NativeContact
	ContainerID string
	Handle      Handle
}

// SaveRequest collects add and delete operations to be executed as one unit.
type SaveRequest struct {
	ops []Operation
}

func NewSaveRequest() *SaveRequest {
	return &SaveRequest{}
}

// Add queues c for creation. An empty containerID selects the store's default container.
func (r *SaveRequest) Add(c NativeContact, containerID string) {
	r.ops = append(r.ops, Operation{Kind: OpAdd, Contact: c, ContainerID: containerID})
}

// Delete queues the contact behind h for removal.
func (r *SaveRequest) Delete(h Handle) {
	r.ops = append(r.ops, Operation{Kind: OpDelete, Handle: h})
}

func (r *SaveRequest) Len() int {
	return len(r.ops)
}

// Operations returns a copy of the queued operations in insertion order.
func (r *SaveRequest) Operations() []Operation {
	out := make([]Operation, len(r.ops))
	copy(out, r.ops)
	return out
}
