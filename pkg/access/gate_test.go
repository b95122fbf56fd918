package access_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/illmade-knight/contact-sync/pkg/access"
	"github.com/illmade-knight/contact-sync/pkg/contactstore"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAuthorizer struct {
	StatusFunc  func(ctx context.Context) (contactstore.AuthStatus, error)
	RequestFunc func(ctx context.Context) (bool, error)
	requests    int
}

func (m *mockAuthorizer) AuthorizationStatus(ctx context.Context) (contactstore.AuthStatus, error) {
	return m.StatusFunc(ctx)
}

func (m *mockAuthorizer) RequestAccess(ctx context.Context) (bool, error) {
	m.requests++
	return m.RequestFunc(ctx)
}

func statusOf(s contactstore.AuthStatus) func(context.Context) (contactstore.AuthStatus, error) {
	return func(context.Context) (contactstore.AuthStatus, error) { return s, nil }
}

func answer(granted bool) func(context.Context) (bool, error) {
	return func(context.Context) (bool, error) { return granted, nil }
}

func TestGate_EnsureAccess(t *testing.T) {
	ctx := context.Background()

	t.Run("authorized resolves without prompting", func(t *testing.T) {
		auth := &mockAuthorizer{StatusFunc: statusOf(contactstore.AuthStatusAuthorized), RequestFunc: answer(false)}
		granted, err := access.NewGate(auth, zerolog.Nop()).EnsureAccess(ctx)
		require.NoError(t, err)
		assert.True(t, granted)
		assert.Zero(t, auth.requests)
	})

	for _, status := range []contactstore.AuthStatus{
		contactstore.AuthStatusNotDetermined,
		contactstore.AuthStatusRestricted,
		contactstore.AuthStatusDenied,
		contactstore.AuthStatusUnknown,
	} {
		t.Run(string(status)+" prompts and returns the answer", func(t *testing.T) {
			for _, want := range []bool{true, false} {
				auth := &mockAuthorizer{StatusFunc: statusOf(status), RequestFunc: answer(want)}
				granted, err := access.NewGate(auth, zerolog.Nop()).EnsureAccess(ctx)
				require.NoError(t, err)
				assert.Equal(t, want, granted)
				assert.Equal(t, 1, auth.requests)
			}
		})
	}

	t.Run("request error denies access", func(t *testing.T) {
		auth := &mockAuthorizer{
			StatusFunc:  statusOf(contactstore.AuthStatusNotDetermined),
			RequestFunc: func(context.Context) (bool, error) { return true, errors.New("prompt dismissed") },
		}
		granted, err := access.NewGate(auth, zerolog.Nop()).EnsureAccess(ctx)
		require.Error(t, err)
		assert.False(t, granted)
	})

	t.Run("cancelled context stops waiting", func(t *testing.T) {
		release := make(chan struct{})
		defer close(release)
		auth := &mockAuthorizer{
			StatusFunc: statusOf(contactstore.AuthStatusNotDetermined),
			RequestFunc: func(context.Context) (bool, error) {
				<-release
				return true, nil
			},
		}
		cctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()

		granted, err := access.NewGate(auth, zerolog.Nop()).EnsureAccess(cctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.False(t, granted)
	})
}

func TestGate_RequestResolvesOnce(t *testing.T) {
	auth := &mockAuthorizer{StatusFunc: statusOf(contactstore.AuthStatusDenied), RequestFunc: answer(true)}
	ch := access.NewGate(auth, zerolog.Nop()).Request(context.Background())

	d, ok := <-ch
	require.True(t, ok)
	assert.True(t, d.Granted)
	assert.True(t, d.Prompted)

	_, ok = <-ch
	assert.False(t, ok, "channel is closed after the single decision")
}

func TestGate_WithInMemoryStore(t *testing.T) {
	store := contactstore.NewInMemoryStore()
	store.SetAuthorization(contactstore.AuthStatusNotDetermined, true)

	granted, err := access.NewGate(store, zerolog.Nop()).EnsureAccess(context.Background())
	require.NoError(t, err)
	assert.True(t, granted)

	status, _ := store.AuthorizationStatus(context.Background())
	assert.Equal(t, contactstore.AuthStatusAuthorized, status)
}
