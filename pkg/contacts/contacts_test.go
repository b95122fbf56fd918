package contacts_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/illmade-knight/contact-sync/pkg/contacts"
	"github.com/illmade-knight/contact-sync/pkg/contactstore"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContact(t *testing.T) {
	c := contacts.Contact{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", PhoneNumber: 5550100, ID: "c-0001"}

	assert.Equal(t, "Ada Lovelace", c.FullName())
	assert.Equal(t, "c-0001", c.URL())
	assert.Equal(t, "Name: Ada Lovelace\nEmail: ada@example.com\nPhone: 5550100\nURL: c-0001", c.String())

	t.Run("value equality", func(t *testing.T) {
		same := c
		assert.Equal(t, c, same)
		seen := map[contacts.Contact]bool{c: true}
		assert.True(t, seen[same])

		same.Email = "other@example.com"
		assert.False(t, seen[same])
	})
}

func TestToNative(t *testing.T) {
	c := contacts.Contact{FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com", PhoneNumber: 5550101, ID: "c-0002"}

	native := contacts.ToNative(c)

	assert.Equal(t, "Grace", native.GivenName)
	assert.Equal(t, "Hopper", native.FamilyName)
	assert.Equal(t, []contactstore.LabeledValue{{Label: "work", Value: "grace@example.com"}}, native.Emails)
	assert.Equal(t, []contactstore.LabeledValue{{Label: "home", Value: "5550101"}}, native.Phones)
	assert.Equal(t, []contactstore.LabeledValue{{Label: "Test", Value: "c-0002"}}, native.URLs)
}

func TestDecode(t *testing.T) {
	t.Run("valid document", func(t *testing.T) {
		doc := `[{"First Name":"Ada","Last Name":"Lovelace","Email":"","Phone":1,"id":"x"}]`
		records, err := contacts.Decode(strings.NewReader(doc))
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, contacts.Contact{FirstName: "Ada", LastName: "Lovelace", PhoneNumber: 1, ID: "x"}, records[0])
	})

	t.Run("missing key fails the document", func(t *testing.T) {
		doc := `[{"First Name":"Ada","Last Name":"Lovelace","Email":"a@b.c","id":"x"}]`
		_, err := contacts.Decode(strings.NewReader(doc))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "entry 0")
	})

	t.Run("string phone fails the document", func(t *testing.T) {
		doc := `[{"First Name":"Ada","Last Name":"Lovelace","Email":"a@b.c","Phone":"555","id":"x"}]`
		_, err := contacts.Decode(strings.NewReader(doc))
		require.Error(t, err)
	})

	t.Run("not an array", func(t *testing.T) {
		_, err := contacts.Decode(strings.NewReader(`{"First Name":"Ada"}`))
		require.Error(t, err)
	})
}

func TestFileSource(t *testing.T) {
	ctx := context.Background()

	records, err := contacts.NewFileSource(filepath.Join("testdata", "contacts.json")).Load(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Turing", records[2].LastName)

	_, err = contacts.NewFileSource(filepath.Join("testdata", "missing.json")).Load(ctx)
	require.Error(t, err)
}

func TestLoadOrEmpty(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.New(zerolog.NewTestWriter(t))

	records := contacts.LoadOrEmpty(ctx, contacts.NewFileSource(filepath.Join("testdata", "missing.json")), logger)
	assert.NotNil(t, records)
	assert.Empty(t, records)

	records = contacts.LoadOrEmpty(ctx, contacts.NewFileSource(filepath.Join("testdata", "contacts.json")), logger)
	assert.Len(t, records, 3)
}
