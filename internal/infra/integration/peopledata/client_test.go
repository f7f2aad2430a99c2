package peopledata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agencyos/enrich-api/internal/entity"
)

func newTestServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/person/enrich", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLookupMapsPersonRecord(t *testing.T) {
	var gotEmail string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotEmail = r.URL.Query().Get("email")
		w.Write([]byte(`{
			"status": 200,
			"likelihood": 9,
			"data": {
				"first_name": "jane",
				"last_name": "smith",
				"job_title": "chief executive officer",
				"job_company_name": "acme corp",
				"linkedin_url": "linkedin.com/in/janesmith",
				"twitter_username": "janesmith"
			}
		}`))
	}))
	defer srv.Close()

	client := NewClient("secret", srv.URL, time.Second, nil)
	profile, err := client.Lookup(context.Background(), "jane+x@acme.com")

	require.NoError(t, err)
	assert.Equal(t, "jane+x@acme.com", gotEmail)
	assert.Equal(t, entity.EnrichmentProfile{
		FirstName:     "Jane",
		LastName:      "Smith",
		CompanyName:   "Acme Corp",
		JobTitle:      "Chief Executive Officer",
		LinkedInURL:   "https://linkedin.com/in/janesmith",
		TwitterHandle: "@janesmith",
	}, *profile)
}

func TestLookupFallsBackToFullNameAndUsername(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{"status":200,"data":{"full_name":"bob van der berg","job_company_name":"globex","linkedin_username":"bobvdb","twitter_username":"@bob"}}`)

	profile, err := NewClient("secret", srv.URL, time.Second, nil).Lookup(context.Background(), "bob@globex.com")

	require.NoError(t, err)
	assert.Equal(t, "Bob", profile.FirstName)
	assert.Equal(t, "Van Der Berg", profile.LastName)
	assert.Equal(t, "https://linkedin.com/in/bobvdb", profile.LinkedInURL)
	assert.Equal(t, "@bob", profile.TwitterHandle)

	blank := newTestServer(t, http.StatusOK, `{"status":200,"data":{"full_name":"   ","job_company_name":"acme"}}`)

	profile, err = NewClient("secret", blank.URL, time.Second, nil).Lookup(context.Background(), "info@acme.com")

	require.NoError(t, err)
	assert.Empty(t, profile.FirstName)
	assert.Empty(t, profile.LastName)
	assert.Equal(t, "Acme", profile.CompanyName)
}

func TestLookupLeavesMissingFieldsEmpty(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{"status":200,"data":{"first_name":"ana","job_company_name":"initech"}}`)

	profile, err := NewClient("secret", srv.URL, time.Second, nil).Lookup(context.Background(), "ana@initech.com")

	require.NoError(t, err)
	assert.Equal(t, entity.EnrichmentProfile{
		FirstName:   "Ana",
		CompanyName: "Initech",
	}, *profile)
}

func TestLookupEmptyRecordIsNoMatch(t *testing.T) {
	for _, body := range []string{`{"status":200,"data":{}}`, `{"status":200,"data":{"full_name":"  "}}`} {
		srv := newTestServer(t, http.StatusOK, body)

		_, err := NewClient("secret", srv.URL, time.Second, nil).Lookup(context.Background(), "ghost@x.io")

		pe, ok := entity.AsProviderError(err)
		require.True(t, ok, body)
		assert.Equal(t, entity.FailureNoMatch, pe.Failure, body)
	}
}

func TestLookupStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   entity.ProviderFailure
	}{
		{http.StatusNotFound, entity.FailureNoMatch},
		{http.StatusTooManyRequests, entity.FailureUnavailable},
		{http.StatusInternalServerError, entity.FailureUnavailable},
		{http.StatusBadGateway, entity.FailureUnavailable},
		{http.StatusUnauthorized, entity.FailureUpstream},
		{http.StatusBadRequest, entity.FailureUpstream},
	}

	for _, tt := range tests {
		srv := newTestServer(t, tt.status, `{"status":0,"error":{"type":"x","message":"upstream says no"}}`)
		_, err := NewClient("secret", srv.URL, time.Second, nil).Lookup(context.Background(), "jane@acme.com")

		pe, ok := entity.AsProviderError(err)
		require.True(t, ok, tt.status)
		assert.Equal(t, tt.want, pe.Failure, tt.status)
		assert.Contains(t, pe.Error(), "upstream says no")
	}
}

func TestLookupInvalidJSON(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{not json`)

	_, err := NewClient("secret", srv.URL, time.Second, nil).Lookup(context.Background(), "jane@acme.com")

	pe, ok := entity.AsProviderError(err)
	require.True(t, ok)
	assert.Equal(t, entity.FailureUpstream, pe.Failure)
}

func TestLookupClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	_, err := NewClient("secret", srv.URL, 20*time.Millisecond, nil).Lookup(context.Background(), "jane@acme.com")

	pe, ok := entity.AsProviderError(err)
	require.True(t, ok)
	assert.Equal(t, entity.FailureTimeout, pe.Failure)
}

func TestLookupUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient("secret", url, time.Second, nil).Lookup(context.Background(), "jane@acme.com")

	pe, ok := entity.AsProviderError(err)
	require.True(t, ok)
	assert.Equal(t, entity.FailureUnavailable, pe.Failure)
}
