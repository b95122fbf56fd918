// Package clients provides HTTP clients for fetching contact data from remote services.
package clients

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/illmade-knight/contact-sync/pkg/contacts"
	"github.com/rs/zerolog"
)

// ContactListClient fetches the contact list document from a remote host.
// It implements contacts.Source.
type ContactListClient struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewContactListClient creates a new client for the contact list host.
func NewContactListClient(baseURL string, logger zerolog.Logger) *ContactListClient {
	return &ContactListClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger.With().Str("client", "contact-list").Logger(),
	}
}

// Load fetches and decodes the contact list.
func (c *ContactListClient) Load(ctx context.Context) ([]contacts.Contact, error) {
	url := fmt.Sprintf("%s/contacts.json", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create contact list request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute contact list request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("contact list not found at %s", url)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("contact list host returned unexpected status code: %d", resp.StatusCode)
	}

	records, err := contacts.Decode(resp.Body)
	if err != nil {
		return nil, err
	}

	c.logger.Info().Int("contacts", len(records)).Msg("Successfully fetched contact list")
	return records, nil
}
