package directus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/agencyos/enrich-api/internal/infra/queue"
)

const contactsCollection = "contacts"

// Client writes enriched contacts into the Directus CRM collection.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *zap.Logger
}

func NewClient(baseURL, token string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

// UpsertContact updates the contact matching the event email or creates it, returning its id.
func (c *Client) UpsertContact(ctx context.Context, event queue.ContactEnrichedEvent) (string, error) {
	payload := contactPayload{
		Email:       strings.ToLower(event.Email),
		FirstName:   event.Profile.FirstName,
		LastName:    event.Profile.LastName,
		JobTitle:    event.Profile.JobTitle,
		CompanyName: event.Profile.CompanyName,
		LinkedInURL: event.Profile.LinkedInURL,
		Twitter:     event.Profile.TwitterHandle,
		Source:      "enrichment:" + event.Provider,
	}

	existingID, err := c.findContactByEmail(ctx, payload.Email)
	if err != nil {
		return "", fmt.Errorf("failed to search contact: %w", err)
	}

	if existingID != "" {
		if _, err := c.send(ctx, http.MethodPatch, c.itemsURL()+"/"+url.PathEscape(existingID), payload); err != nil {
			return "", fmt.Errorf("failed to update contact %s: %w", existingID, err)
		}
		c.logger.Debug("Directus contact updated", zap.String("id", existingID))
		return existingID, nil
	}

	body, err := c.send(ctx, http.MethodPost, c.itemsURL(), payload)
	if err != nil {
		return "", fmt.Errorf("failed to create contact: %w", err)
	}

	var created itemResponse
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("failed to decode created contact: %w", err)
	}
	id := formatID(created.Data.ID)
	if id == "" {
		return "", fmt.Errorf("directus returned no contact id")
	}
	c.logger.Debug("Directus contact created", zap.String("id", id))
	return id, nil
}

func (c *Client) findContactByEmail(ctx context.Context, email string) (string, error) {
	query := url.Values{}
	query.Set("filter[email][_eq]", email)
	query.Set("fields", "id")
	query.Set("limit", "1")

	body, err := c.send(ctx, http.MethodGet, c.itemsURL()+"?"+query.Encode(), nil)
	if err != nil {
		return "", err
	}

	var result listResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}
	if len(result.Data) == 0 {
		return "", nil
	}
	return formatID(result.Data[0].ID), nil
}

func (c *Client) send(ctx context.Context, method, endpoint string, payload any) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	c.addAuthHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("directus %s %d: %s", method, resp.StatusCode, string(body))
	}
	return body, nil
}

func (c *Client) itemsURL() string {
	return fmt.Sprintf("%s/items/%s", c.baseURL, contactsCollection)
}

func (c *Client) addAuthHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}

// Directus ids are uuids or integers depending on the collection.
func formatID(id any) string {
	switch v := id.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprint(v)
	}
}
