package tavily

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient("  ")
	assert.Error(t, err)
}

func TestSearch_SendsRequestAndDecodes(t *testing.T) {
	var got SearchRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Bearer tvly-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"query":"asthma","results":[
			{"title":"Asthma","url":"https://www.mayoclinic.org/asthma","content":"Asthma narrows airways.","score":0.9},
			{"title":"Asthma basics","url":"https://www.cdc.gov/asthma","content":"Triggers vary.","score":0.8}
		]}`))
	}))
	defer srv.Close()

	c, err := NewClient("tvly-key", WithBaseURL(srv.URL+"/"))
	require.NoError(t, err)

	resp, err := c.Search(context.Background(), SearchRequest{
		APIKey:         "ignored",
		Query:          "asthma",
		SearchDepth:    DepthAdvanced,
		MaxResults:     3,
		IncludeDomains: []string{"mayoclinic.org", "cdc.gov"},
	})
	require.NoError(t, err)

	assert.Equal(t, "tvly-key", got.APIKey)
	assert.Equal(t, "asthma", got.Query)
	assert.Equal(t, "advanced", got.SearchDepth)
	assert.Equal(t, 3, got.MaxResults)
	assert.Equal(t, []string{"mayoclinic.org", "cdc.gov"}, got.IncludeDomains)

	require.Len(t, resp.Results, 2)
	assert.Equal(t, "https://www.mayoclinic.org/asthma", resp.Results[0].URL)
	assert.Equal(t, "Triggers vary.", resp.Results[1].Content)
}

func TestSearch_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c, err := NewClient("bad", WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = c.Search(context.Background(), SearchRequest{Query: "flu"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "invalid api key")
}

func TestSearch_EmptyQuery(t *testing.T) {
	c, err := NewClient("k")
	require.NoError(t, err)
	_, err = c.Search(context.Background(), SearchRequest{Query: " "})
	assert.Error(t, err)
}
