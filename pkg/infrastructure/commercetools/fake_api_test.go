package commercetools

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vsinha/pluanalyzer/pkg/infrastructure/config"
	"github.com/vsinha/pluanalyzer/pkg/infrastructure/logger"
)

const testProjectKey = "plu-test"

// fakeAPI serves the token endpoint and the listings used by the client
type fakeAPI struct {
	server *httptest.Server

	channels  []map[string]any
	products  []map[string]any
	inventory map[string][]map[string]any

	tokenCalls   atomic.Int64
	throttleNext atomic.Int64
	failWith     atomic.Value // string message, empty for none

	mu       sync.Mutex
	wheres   []string
	lastAuth string
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	api := &fakeAPI{inventory: make(map[string][]map[string]any)}
	api.failWith.Store("")

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", api.handleToken)
	mux.HandleFunc("/"+testProjectKey+"/channels", api.listing(func(*http.Request) []map[string]any {
		return api.channels
	}))
	mux.HandleFunc("/"+testProjectKey+"/product-projections", api.listing(func(*http.Request) []map[string]any {
		return api.products
	}))
	mux.HandleFunc("/"+testProjectKey+"/inventory", api.listing(func(r *http.Request) []map[string]any {
		var entries []map[string]any
		for _, sku := range parseSKUPredicate(r.URL.Query().Get("where")) {
			entries = append(entries, api.inventory[sku]...)
		}
		return entries
	}))

	api.server = httptest.NewServer(mux)
	t.Cleanup(api.server.Close)
	return api
}

func (api *fakeAPI) handleToken(w http.ResponseWriter, r *http.Request) {
	api.tokenCalls.Add(1)
	id, secret, ok := r.BasicAuth()
	w.Header().Set("Content-Type", "application/json")
	if !ok || id != "client" || secret != "secret" {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error":             "invalid_client",
			"error_description": "Please provide valid client credentials",
		})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"access_token": "token-123",
		"token_type":   "Bearer",
		"expires_in":   172800,
		"scope":        r.FormValue("scope"),
	})
}

func (api *fakeAPI) listing(items func(*http.Request) []map[string]any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		api.mu.Lock()
		api.wheres = append(api.wheres, r.URL.Query().Get("where"))
		api.lastAuth = r.Header.Get("Authorization")
		api.mu.Unlock()

		if api.throttleNext.Load() > 0 {
			api.throttleNext.Add(-1)
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		if msg := api.failWith.Load().(string); msg != "" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]any{"statusCode": 400, "message": msg})
			return
		}

		all := items(r)
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		end := min(offset+limit, len(all))
		page := []map[string]any{}
		if offset < len(all) {
			page = all[offset:end]
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"limit":   limit,
			"offset":  offset,
			"count":   len(page),
			"total":   len(all),
			"results": page,
		})
	}
}

func parseSKUPredicate(where string) []string {
	inner := strings.TrimSuffix(strings.TrimPrefix(where, "sku in ("), ")")
	var skus []string
	for _, part := range strings.Split(inner, ",") {
		skus = append(skus, strings.Trim(part, `"`))
	}
	return skus
}

func (api *fakeAPI) config() config.CommerceToolsConfig {
	return config.CommerceToolsConfig{
		ClientID:       "client",
		ClientSecret:   "secret",
		ProjectKey:     testProjectKey,
		AuthURL:        api.server.URL,
		APIURL:         api.server.URL,
		Concurrency:    3,
		BatchSize:      2,
		MaxRetries:     3,
		RetryBaseDelay: time.Millisecond,
		Timeout:        5 * time.Second,
	}
}

func (api *fakeAPI) client(t *testing.T) *Client {
	t.Helper()
	c, err := NewClient(api.config(), WithLogger(logger.Discard()))
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return c
}
