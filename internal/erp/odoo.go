// internal/erp/odoo.go
package erp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/andresuchdata/stocksense/internal/config"
	"github.com/rs/zerolog/log"
)

const (
	jsonrpcPath  = "/jsonrpc"
	maxAttempts  = 3
	rpcTimeout   = 60 * time.Second
	loginTimeout = 10 * time.Second
)

// OdooClient talks JSON-RPC to an Odoo-compatible ERP. Queries retry up to
// three times and re-authenticate between failed attempts.
type OdooClient struct {
	url      string
	database string
	username string
	password string
	http     *http.Client

	mu  sync.Mutex
	uid int
}

func NewOdooClient(cfg config.ERPConfig) *OdooClient {
	return &OdooClient{
		url:      strings.TrimRight(cfg.URL, "/"),
		database: cfg.Database,
		username: cfg.Username,
		password: cfg.Password,
		http:     &http.Client{Timeout: rpcTimeout},
	}
}

type rpcRequest struct {
	JSONRPC string    `json:"jsonrpc"`
	Method  string    `json:"method"`
	Params  rpcParams `json:"params"`
	ID      int64     `json:"id"`
}

type rpcParams struct {
	Service string        `json:"service"`
	Method  string        `json:"method"`
	Args    []interface{} `json:"args"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("erp rpc error %d: %s", e.Code, e.Message)
}

func (c *OdooClient) call(ctx context.Context, service, method string, args []interface{}, out interface{}) error {
	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  "call",
		Params:  rpcParams{Service: service, Method: method, Args: args},
		ID:      time.Now().UnixNano(),
	})
	if err != nil {
		return fmt.Errorf("encode rpc request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+jsonrpcPath, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build rpc request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("rpc call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("rpc call returned status %d", resp.StatusCode)
	}

	var envelope rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode rpc response: %w", err)
	}
	if envelope.Error != nil {
		return envelope.Error
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return fmt.Errorf("decode rpc result: %w", err)
		}
	}
	return nil
}

// Authenticate establishes a session and caches the user id.
func (c *OdooClient) Authenticate(ctx context.Context) error {
	loginCtx, cancel := context.WithTimeout(ctx, loginTimeout)
	defer cancel()

	var uid int
	err := c.call(loginCtx, "common", "login", []interface{}{c.database, c.username, c.password}, &uid)
	if err != nil {
		return fmt.Errorf("erp authentication failed: %w", err)
	}
	if uid == 0 {
		return fmt.Errorf("erp authentication rejected for user %s", c.username)
	}

	c.mu.Lock()
	c.uid = uid
	c.mu.Unlock()
	return nil
}

func (c *OdooClient) currentUID() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.uid
}

// Query runs a search_read against the ERP. Failed attempts re-authenticate
// before retrying; the last error is returned after three attempts.
func (c *OdooClient) Query(ctx context.Context, entity string, filter []Condition, fields []string, limit int) ([]Record, error) {
	domain := make([][]interface{}, 0, len(filter))
	for _, cond := range filter {
		domain = append(domain, []interface{}{cond.Field, cond.Op, cond.Value})
	}
	kwargs := map[string]interface{}{
		"fields": fields,
		"limit":  limit,
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if c.currentUID() == 0 {
			if err := c.Authenticate(ctx); err != nil {
				lastErr = err
				continue
			}
		}

		args := []interface{}{
			c.database, c.currentUID(), c.password,
			entity, "search_read", []interface{}{domain}, kwargs,
		}

		var records []Record
		if err := c.call(ctx, "object", "execute_kw", args, &records); err != nil {
			lastErr = err
			log.Warn().Err(err).Str("entity", entity).Int("attempt", attempt+1).
				Msg("erp query failed, re-authenticating")
			// Session may have gone stale; establish a fresh one before retrying.
			if authErr := c.Authenticate(ctx); authErr != nil {
				lastErr = authErr
			}
			continue
		}
		return records, nil
	}

	return nil, fmt.Errorf("erp query %s failed after %d attempts: %w", entity, maxAttempts, lastErr)
}
