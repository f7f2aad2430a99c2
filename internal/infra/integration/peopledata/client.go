package peopledata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agencyos/enrich-api/internal/entity"
)

const (
	ProviderName   = "peopledata"
	DefaultBaseURL = "https://api.peopledatalabs.com/v5"
)

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *zap.Logger
}

func NewClient(apiKey, baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (c *Client) Name() string {
	return ProviderName
}

// Lookup calls GET /person/enrich and maps the person record onto a profile.
func (c *Client) Lookup(ctx context.Context, email string) (*entity.EnrichmentProfile, error) {
	endpoint := fmt.Sprintf("%s/person/enrich?%s", c.baseURL, url.Values{"email": {email}}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, entity.NewProviderError(ProviderName, entity.FailureUpstream, err)
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.transportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, c.statusError(resp.StatusCode, body)
	}

	var payload enrichResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, entity.NewProviderError(ProviderName, entity.FailureUpstream, fmt.Errorf("decode response: %w", err))
	}

	profile := c.toProfile(payload.Data)
	if profile == nil {
		return nil, entity.NewProviderError(ProviderName, entity.FailureNoMatch, nil)
	}
	return profile, nil
}

func (c *Client) toProfile(d personData) *entity.EnrichmentProfile {
	first, last := d.FirstName, d.LastName
	if first == "" && last == "" {
		if fields := strings.Fields(d.FullName); len(fields) > 0 {
			first = fields[0]
			last = strings.Join(fields[1:], " ")
		}
	}
	if first == "" && d.JobCompanyName == "" {
		return nil
	}

	linkedIn := d.LinkedInURL
	if linkedIn == "" && d.LinkedInUser != "" {
		linkedIn = "linkedin.com/in/" + d.LinkedInUser
	}
	if linkedIn != "" && !strings.HasPrefix(linkedIn, "http://") && !strings.HasPrefix(linkedIn, "https://") {
		linkedIn = "https://" + linkedIn
	}

	handle := strings.TrimSpace(d.TwitterUsername)
	if handle != "" && !strings.HasPrefix(handle, "@") {
		handle = "@" + handle
	}

	// Casers are stateful, one per call.
	title := cases.Title(language.English)
	return &entity.EnrichmentProfile{
		FirstName:     title.String(first),
		LastName:      title.String(last),
		CompanyName:   title.String(d.JobCompanyName),
		JobTitle:      title.String(d.JobTitle),
		LinkedInURL:   linkedIn,
		TwitterHandle: handle,
	}
}

func (c *Client) transportError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return entity.NewProviderError(ProviderName, entity.FailureTimeout, err)
	}
	return entity.NewProviderError(ProviderName, entity.FailureUnavailable, err)
}

func (c *Client) statusError(status int, body []byte) error {
	var apiErr errorResponse
	msg := string(body)
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
		msg = apiErr.Error.Message
	}
	cause := fmt.Errorf("status %d: %s", status, msg)

	switch {
	case status == http.StatusNotFound:
		return entity.NewProviderError(ProviderName, entity.FailureNoMatch, cause)
	case status == http.StatusTooManyRequests || status >= 500:
		c.logger.Warn("Enrichment provider unavailable", zap.Int("status", status), zap.String("message", msg))
		return entity.NewProviderError(ProviderName, entity.FailureUnavailable, cause)
	default:
		c.logger.Error("Enrichment provider rejected request", zap.Int("status", status), zap.String("message", msg))
		return entity.NewProviderError(ProviderName, entity.FailureUpstream, cause)
	}
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "AgencyOS-Enrich/1.0")
}
