// Package contacts holds the contact record model and the sources that load it.
package contacts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Source yields the contact records to synchronize.
type Source interface {
	Load(ctx context.Context) ([]Contact, error)
}

// entry mirrors one object of the bundled data file. Pointer fields let the
// validator tell a missing key from an empty value.
type entry struct {
	FirstName   *string `json:"First Name" validate:"required"`
	LastName    *string `json:"Last Name" validate:"required"`
	Email       *string `json:"Email" validate:"required"`
	PhoneNumber *int    `json:"Phone" validate:"required"`
	ID          *string `json:"id" validate:"required"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Decode reads a JSON array of contact entries. Any malformed entry fails the
// whole document.
func Decode(r io.Reader) ([]Contact, error) {
	var entries []entry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode contact list: %w", err)
	}

	out := make([]Contact, 0, len(entries))
	for i, e := range entries {
		if err := validate.Struct(e); err != nil {
			return nil, fmt.Errorf("contact entry %d is invalid: %w", i, err)
		}
		out = append(out, Contact{
			FirstName:   *e.FirstName,
			LastName:    *e.LastName,
			Email:       *e.Email,
			PhoneNumber: *e.PhoneNumber,
			ID:          *e.ID,
		})
	}
	return out, nil
}

// FileSource loads contacts from a JSON file on disk.
type FileSource struct {
	Path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (s *FileSource) Load(ctx context.Context) ([]Contact, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open contact list: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// LoadOrEmpty loads from src and degrades any failure to an empty list.
// The failure is logged once at warn level and not returned.
func LoadOrEmpty(ctx context.Context, src Source, logger zerolog.Logger) []Contact {
	records, err := src.Load(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Contact list unavailable, continuing with no contacts")
		return []Contact{}
	}
	return records
}
