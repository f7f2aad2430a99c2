// Package mockdata fabricates enrichment profiles from the email address itself.
// It stands in for a real data provider in development and demos.
package mockdata

import (
	"context"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/agencyos/enrich-api/internal/entity"
)

const (
	ProviderName = "mock"

	DefaultDelay = 800 * time.Millisecond

	placeholderLastName = "Doe"
	placeholderCompany  = "Unknown Corp"
	placeholderJobTitle = "CEO"
	linkedInTemplate    = "https://linkedin.com/in/"
)

type Provider struct {
	delay time.Duration
}

// NewProvider returns a provider that waits delay before answering to mimic a network call.
func NewProvider(delay time.Duration) *Provider {
	if delay < 0 {
		delay = 0
	}
	return &Provider{delay: delay}
}

func (p *Provider) Name() string {
	return ProviderName
}

func (p *Provider) Lookup(ctx context.Context, email string) (*entity.EnrichmentProfile, error) {
	if p.delay > 0 {
		timer := time.NewTimer(p.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return BuildProfile(email), nil
}

// BuildProfile is a pure function of email.
func BuildProfile(email string) *entity.EnrichmentProfile {
	parts := strings.Split(email, "@")
	namePart := parts[0]
	domain := ""
	if len(parts) > 1 {
		domain = parts[1]
	}

	company := placeholderCompany
	if domain != "" {
		company = capitalize(strings.Split(domain, ".")[0])
	}

	return &entity.EnrichmentProfile{
		FirstName:     capitalize(namePart),
		LastName:      placeholderLastName,
		CompanyName:   company,
		JobTitle:      placeholderJobTitle,
		LinkedInURL:   linkedInTemplate + namePart,
		TwitterHandle: "@" + namePart,
	}
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
