package httputil

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/cgmap/pkg/cache"
	"github.com/matzehuels/cgmap/pkg/errors"
)

const doc = `{"sequence_length": 100}`

func TestIsURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"https://example.org/puc19.json", true},
		{"http://localhost:8080/x", true},
		{"puc19.json", false},
		{"/tmp/https.json", false},
		{"ftp://example.org/x", false},
	}
	for _, tt := range tests {
		if got := IsURL(tt.in); got != tt.want {
			t.Errorf("IsURL(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFetchCaches(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if ua := r.Header.Get("User-Agent"); !strings.HasPrefix(ua, "cgmap/") {
			t.Errorf("User-Agent = %q", ua)
		}
		w.Write([]byte(doc))
	}))
	defer server.Close()

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	client := NewClient(WithCache(fc, time.Hour), WithHTTPClient(server.Client()))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		data, err := client.Fetch(ctx, server.URL, false)
		if err != nil {
			t.Fatalf("Fetch() error: %v", err)
		}
		if string(data) != doc {
			t.Errorf("Fetch() = %q", data)
		}
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("server hit %d times, want 1", n)
	}

	if _, err := client.Fetch(ctx, server.URL, true); err != nil {
		t.Fatal(err)
	}
	if n := hits.Load(); n != 2 {
		t.Errorf("refresh did not refetch: %d hits", n)
	}
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(doc))
	}))
	defer server.Close()

	client := NewClient(WithHTTPClient(server.Client()), WithRetryDelay(time.Millisecond))
	data, err := client.Fetch(context.Background(), server.URL, false)
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if string(data) != doc || hits.Load() != 3 {
		t.Errorf("Fetch() = %q after %d hits", data, hits.Load())
	}
}

func TestFetchErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		check   func(error) bool
		wantHit int32
	}{
		{"not found", http.StatusNotFound, "", func(err error) bool { return errors.Is(err, errors.ErrCodeNotFound) }, 1},
		{"forbidden", http.StatusForbidden, "", func(err error) bool { return errors.Is(err, errors.ErrCodeInvalidInput) }, 1},
		{"always failing", http.StatusServiceUnavailable, "", func(err error) bool { return stderrors.Is(err, ErrNetwork) }, 3},
		{"too large", http.StatusOK, strings.Repeat("x", 64), func(err error) bool { return errors.Is(err, errors.ErrCodeInvalidInput) }, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(WithHTTPClient(server.Client()), WithRetryDelay(time.Millisecond), WithMaxBytes(32))
			_, err := client.Fetch(context.Background(), server.URL, false)
			if !tt.check(err) {
				t.Errorf("Fetch() error = %v", err)
			}
			if n := hits.Load(); n != tt.wantHit {
				t.Errorf("server hit %d times, want %d", n, tt.wantHit)
			}
		})
	}
}

func TestFetchContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	client := NewClient(WithHTTPClient(server.Client()))
	if _, err := client.Fetch(ctx, server.URL, false); !stderrors.Is(err, context.Canceled) {
		t.Errorf("Fetch() error = %v, want context.Canceled", err)
	}
}
