package entity

import "context"

// EnrichmentRequest is the body accepted by the contact enrichment endpoint.
type EnrichmentRequest struct {
	Email string `json:"email"`
}

// EnrichmentProfile is the normalized person/company profile returned for an email.
type EnrichmentProfile struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	CompanyName   string `json:"company_name"`
	JobTitle      string `json:"job_title"`
	LinkedInURL   string `json:"linkedin_url"`
	TwitterHandle string `json:"twitter_handle"`
}

// Provider is the source of enrichment data (mock generator, third-party API, ...).
type Provider interface {
	Name() string
	Lookup(ctx context.Context, email string) (*EnrichmentProfile, error)
}
