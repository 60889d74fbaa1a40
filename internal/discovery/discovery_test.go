package discovery

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadCatalog(t *testing.T) {
	t.Parallel()

	catalog, err := LoadCatalog()
	require.NoError(t, err)
	require.Equal(t,
		[]string{"ecommerce", "education", "finance", "insurance", "real_estate"},
		catalog.Names(),
	)
	require.NotEmpty(t, catalog.Verticals["insurance"].Companies)
	require.Contains(t, catalog.Keywords("insurance"), "insurtech")
	require.Equal(t, []string{"underwater_basket_weaving"}, catalog.Keywords("underwater_basket_weaving"))
}

func TestStaticSourceFind(t *testing.T) {
	t.Parallel()

	catalog, err := LoadCatalog()
	require.NoError(t, err)
	source := NewStaticSource(catalog)

	companies, err := source.Find(context.Background(), "insurance", 5)
	require.NoError(t, err)
	require.Len(t, companies, 5)
	require.Equal(t, "Lemonade", companies[0].Name)
	require.Equal(t, "lemonade.com", companies[0].Website)
	require.Equal(t, "insurance", companies[0].Vertical)
}

func TestStaticSourceUnknownVertical(t *testing.T) {
	t.Parallel()

	catalog, err := LoadCatalog()
	require.NoError(t, err)
	_, err = NewStaticSource(catalog).Find(context.Background(), "aerospace", 5)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown vertical")
}

func apolloServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func newTestApollo(t *testing.T, baseURL string) *ApolloSource {
	t.Helper()
	catalog, err := LoadCatalog()
	require.NoError(t, err)
	source, err := NewApolloSource(ApolloConfig{
		APIKey:      "test-key",
		BaseURL:     baseURL,
		CompanySize: "mid",
	}, catalog, nil)
	require.NoError(t, err)
	return source
}

func TestApolloSourceFind(t *testing.T) {
	t.Parallel()

	var gotPayload searchRequest
	server := apolloServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, searchPath, r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		_ = json.NewEncoder(w).Encode(searchResponse{Organizations: []organization{
			{Name: "Lemonade", WebsiteURL: "lemonade.com", Industry: "insurance"},
			{Name: "Hippo", WebsiteURL: "hippo.com", Industry: "insurance"},
		}})
	})

	source := newTestApollo(t, server.URL)
	companies, err := source.Find(context.Background(), "insurance", 2)
	require.NoError(t, err)
	require.Len(t, companies, 2)
	require.Equal(t, "Lemonade", companies[0].Name)
	require.Equal(t, "insurance", companies[0].Vertical)

	require.Equal(t, "test-key", gotPayload.APIKey)
	require.Equal(t, []string{"50,500"}, gotPayload.NumEmployeesRanges)
	require.Equal(t, 2, gotPayload.PerPage)
}

func TestApolloSourceAuthFailure(t *testing.T) {
	t.Parallel()

	server := apolloServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	source := newTestApollo(t, server.URL)
	_, err := source.Find(context.Background(), "insurance", 10)
	require.Error(t, err)
	require.Contains(t, err.Error(), "authentication failed")
}

func TestApolloSourceQuotaExceeded(t *testing.T) {
	t.Parallel()

	server := apolloServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	source := newTestApollo(t, server.URL)
	_, err := source.Find(context.Background(), "insurance", 10)
	require.Error(t, err)
	require.Contains(t, err.Error(), "quota exceeded")
}

func TestApolloSourceRequiresKey(t *testing.T) {
	t.Parallel()

	catalog, err := LoadCatalog()
	require.NoError(t, err)
	_, err = NewApolloSource(ApolloConfig{}, catalog, nil)
	require.Error(t, err)
}
