// Package directory consumes the central agency registry: a flat JSON list
// mapping agency codes to the base URLs of independently-operated story
// services. The registry itself is run elsewhere; this package only reads
// from it and registers entries.
package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
)

// An Entry describes one agency in the network.
type Entry struct {
	AgencyName string `json:"agency_name"`
	URL        string `json:"url"`
	AgencyCode string `json:"agency_code"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

func NewClient(baseURL string, httpClient *http.Client, logger zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// List fetches every registered agency.
func (c *Client) List(ctx context.Context) ([]Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("directory: unexpected status %v", resp.Status)
	}

	var entries []Entry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("directory: decoding listing: %w", err)
	}

	c.logger.Debug().Int("count", len(entries)).Msg("fetched directory")
	return entries, nil
}

// Register adds an agency to the directory. Meant to be run once per agency.
func (c *Client) Register(ctx context.Context, entry Entry) error {
	b, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("directory: unexpected status %v", resp.Status)
	}

	c.logger.Info().Str("code", entry.AgencyCode).Msg("registered agency")
	return nil
}
