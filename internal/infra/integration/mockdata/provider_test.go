package mockdata

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agencyos/enrich-api/internal/entity"
)

func TestBuildProfileScenarios(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  entity.EnrichmentProfile
	}{
		{
			name:  "full address",
			email: "jane@acme.com",
			want: entity.EnrichmentProfile{
				FirstName:     "Jane",
				LastName:      "Doe",
				CompanyName:   "Acme",
				JobTitle:      "CEO",
				LinkedInURL:   "https://linkedin.com/in/jane",
				TwitterHandle: "@jane",
			},
		},
		{
			name:  "no domain",
			email: "bob",
			want: entity.EnrichmentProfile{
				FirstName:     "Bob",
				LastName:      "Doe",
				CompanyName:   "Unknown Corp",
				JobTitle:      "CEO",
				LinkedInURL:   "https://linkedin.com/in/bob",
				TwitterHandle: "@bob",
			},
		},
		{
			name:  "empty domain after at",
			email: "bob@",
			want: entity.EnrichmentProfile{
				FirstName:     "Bob",
				LastName:      "Doe",
				CompanyName:   "Unknown Corp",
				JobTitle:      "CEO",
				LinkedInURL:   "https://linkedin.com/in/bob",
				TwitterHandle: "@bob",
			},
		},
		{
			name:  "subdomain keeps first label and rest of name unchanged",
			email: "mcDonald.x@mail.bigco.io",
			want: entity.EnrichmentProfile{
				FirstName:     "McDonald.x",
				LastName:      "Doe",
				CompanyName:   "Mail",
				JobTitle:      "CEO",
				LinkedInURL:   "https://linkedin.com/in/mcDonald.x",
				TwitterHandle: "@mcDonald.x",
			},
		},
		{
			name:  "non ascii first letter",
			email: "élodie@ça.fr",
			want: entity.EnrichmentProfile{
				FirstName:     "Élodie",
				LastName:      "Doe",
				CompanyName:   "Ça",
				JobTitle:      "CEO",
				LinkedInURL:   "https://linkedin.com/in/élodie",
				TwitterHandle: "@élodie",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, *BuildProfile(tt.email))
		})
	}
}

func TestBuildProfileIsDeterministic(t *testing.T) {
	for _, email := range []string{"jane@acme.com", "bob", "x@y"} {
		assert.Equal(t, BuildProfile(email), BuildProfile(email))
	}
}

func TestLookupHonoursDelay(t *testing.T) {
	p := NewProvider(30 * time.Millisecond)

	start := time.Now()
	profile, err := p.Lookup(context.Background(), "jane@acme.com")

	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	assert.Equal(t, "Acme", profile.CompanyName)
	assert.Equal(t, ProviderName, p.Name())
}

func TestLookupCancelledDuringDelay(t *testing.T) {
	p := NewProvider(time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	profile, err := p.Lookup(ctx, "jane@acme.com")

	assert.Nil(t, profile)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewProviderClampsNegativeDelay(t *testing.T) {
	profile, err := NewProvider(-time.Second).Lookup(context.Background(), "jane@acme.com")
	require.NoError(t, err)
	assert.Equal(t, "Jane", profile.FirstName)
}
