// Package checkpoint implements the client side of the checkpoint
// cache a CHECKPOINTED function's call is wrapped in: a Store
// abstraction plus an HTTP/2-backed implementation talking to an
// external, co-located cache side-car, and an in-memory implementation
// for tests.
package checkpoint

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/net/http2"
)

// Store is the checkpoint cache contract: look up a key, and write a
// key/value pair back after a miss.
type Store interface {
	Lookup(ctx context.Context, keyBlob []byte) (exists bool, val []byte, err error)
	Write(ctx context.Context, keyBlob, valBlob []byte) error
}

// InMemoryStore is a Store backed by a plain, mutex-guarded map --
// used by tests and by internal/refbackend.
type InMemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{data: make(map[string][]byte)}
}

func (s *InMemoryStore) Lookup(_ context.Context, keyBlob []byte) (bool, []byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[string(keyBlob)]
	return ok, v, nil
}

func (s *InMemoryStore) Write(_ context.Context, keyBlob, valBlob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[string(keyBlob)] = valBlob
	return nil
}

// HTTPStore talks to an external checkpoint cache over cleartext
// HTTP/2 (h2c), since the cache side-car is assumed to live on the
// same host/pod as the compiler.
type HTTPStore struct {
	baseURL string
	client  *http.Client
}

// NewHTTPStore builds an HTTPStore against baseURL, configuring its
// transport for prior-knowledge h2c the way a co-located sidecar
// client would.
func NewHTTPStore(baseURL string) *HTTPStore {
	transport := &http2.Transport{
		AllowHTTP: true,
		DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
			d := net.Dialer{Timeout: 5 * time.Second}
			return d.DialContext(ctx, network, addr)
		},
	}
	return &HTTPStore{baseURL: baseURL, client: &http.Client{Transport: transport, Timeout: 10 * time.Second}}
}

func (s *HTTPStore) Lookup(ctx context.Context, keyBlob []byte) (bool, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/checkpoint/"+hexKey(keyBlob), nil)
	if err != nil {
		return false, nil, fmt.Errorf("checkpoint: build lookup request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return false, nil, fmt.Errorf("checkpoint: lookup: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return false, nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, nil, fmt.Errorf("checkpoint: lookup returned status %d", resp.StatusCode)
	}
	val := make([]byte, resp.ContentLength)
	if _, err := resp.Body.Read(val); err != nil && err.Error() != "EOF" {
		return false, nil, fmt.Errorf("checkpoint: read lookup body: %w", err)
	}
	return true, val, nil
}

func (s *HTTPStore) Write(ctx context.Context, keyBlob, valBlob []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.baseURL+"/checkpoint/"+hexKey(keyBlob), bytes.NewReader(valBlob))
	if err != nil {
		return fmt.Errorf("checkpoint: build write request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("checkpoint: write: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("checkpoint: write returned status %d", resp.StatusCode)
	}
	return nil
}

func hexKey(b []byte) string {
	const hextable = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = hextable[c>>4]
		out[i*2+1] = hextable[c&0x0f]
	}
	return string(out)
}
