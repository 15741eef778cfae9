// internal/erp/odoo_test.go
package erp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/andresuchdata/stocksense/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeERP serves the JSON-RPC surface the client expects: a login call on the
// "common" service and search_read calls on the "object" service.
type fakeERP struct {
	t          *testing.T
	logins     int64
	queries    int64
	failFirstN int64
	records    []Record
}

func (f *fakeERP) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		require.Equal(f.t, "/jsonrpc", r.URL.Path)

		var req struct {
			Params struct {
				Service string        `json:"service"`
				Method  string        `json:"method"`
				Args    []interface{} `json:"args"`
			} `json:"params"`
		}
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&req))

		switch req.Params.Service {
		case "common":
			atomic.AddInt64(&f.logins, 1)
			writeResult(w, 2)
		case "object":
			n := atomic.AddInt64(&f.queries, 1)
			if n <= atomic.LoadInt64(&f.failFirstN) {
				writeRPCError(w, "session expired")
				return
			}
			writeResult(w, f.records)
		default:
			f.t.Errorf("unexpected rpc service %q", req.Params.Service)
		}
	}
}

func writeResult(w http.ResponseWriter, result interface{}) {
	json.NewEncoder(w).Encode(map[string]interface{}{"result": result})
}

func writeRPCError(w http.ResponseWriter, message string) {
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{"code": 100, "message": message},
	})
}

func newOdooTestClient(url string) *OdooClient {
	return NewOdooClient(config.ERPConfig{
		URL:      url,
		Database: "test",
		Username: "admin",
		Password: "admin",
	})
}

func TestOdooQueryAuthenticatesLazily(t *testing.T) {
	backend := &fakeERP{t: t, records: []Record{
		{"id": 1.0, "name": "Widget"},
	}}
	server := httptest.NewServer(backend.handler())
	defer server.Close()

	client := newOdooTestClient(server.URL)
	records, err := client.Query(context.Background(), EntityProduct, nil, []string{"id", "name"}, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)

	id, ok := records[0].Int(FieldID)
	require.True(t, ok)
	assert.Equal(t, 1, id)
	assert.Equal(t, int64(1), atomic.LoadInt64(&backend.logins))
}

func TestOdooQueryRetriesAfterFailure(t *testing.T) {
	backend := &fakeERP{t: t, failFirstN: 1, records: []Record{
		{"id": 2.0, "name": "Gadget"},
	}}
	server := httptest.NewServer(backend.handler())
	defer server.Close()

	client := newOdooTestClient(server.URL)
	records, err := client.Query(context.Background(), EntitySaleLine, []Condition{
		{Field: FieldProductID, Op: "=", Value: 2},
	}, []string{"id"}, 100)
	require.NoError(t, err)
	require.Len(t, records, 1)

	// The failed attempt re-authenticated before retrying.
	assert.Equal(t, int64(2), atomic.LoadInt64(&backend.queries))
	assert.GreaterOrEqual(t, atomic.LoadInt64(&backend.logins), int64(2))
}

func TestOdooQueryGivesUpAfterMaxAttempts(t *testing.T) {
	backend := &fakeERP{t: t, failFirstN: 100}
	server := httptest.NewServer(backend.handler())
	defer server.Close()

	client := newOdooTestClient(server.URL)
	_, err := client.Query(context.Background(), EntitySaleLine, nil, []string{"id"}, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Equal(t, int64(3), atomic.LoadInt64(&backend.queries))
}

func TestOdooAuthenticateRejectsZeroUID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeResult(w, 0)
	}))
	defer server.Close()

	client := newOdooTestClient(server.URL)
	err := client.Authenticate(context.Background())
	assert.Error(t, err)
}
