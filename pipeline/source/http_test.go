package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTTP_Fetch(t *testing.T) {
	t.Run("fetches and decodes a JSON product", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				t.Errorf("method = %s, want GET", r.Method)
			}
			if accept := r.Header.Get("Accept"); accept != "application/json" {
				t.Errorf("Accept = %q, want application/json", accept)
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"Product Name": "GlowBoost Vitamin C Serum", "Price": "₹699"}`))
		}))
		defer server.Close()

		raw, err := NewHTTP(server.URL).Fetch(context.Background())
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if raw["Product Name"] != "GlowBoost Vitamin C Serum" {
			t.Errorf("Product Name = %v", raw["Product Name"])
		}
	})

	t.Run("non-200 status is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "not here", http.StatusNotFound)
		}))
		defer server.Close()

		_, err := NewHTTP(server.URL).Fetch(context.Background())
		if err == nil {
			t.Fatal("expected error for 404 response")
		}
		if !strings.Contains(err.Error(), "404") {
			t.Errorf("error = %v, want status mentioned", err)
		}
	})

	t.Run("invalid JSON body is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>surprise</html>"))
		}))
		defer server.Close()

		if _, err := NewHTTP(server.URL).Fetch(context.Background()); err == nil {
			t.Fatal("expected error for non-JSON body")
		}
	})

	t.Run("uses the supplied client", func(t *testing.T) {
		var used bool
		client := &http.Client{
			Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
				used = true
				return &http.Response{
					StatusCode: http.StatusOK,
					Status:     "200 OK",
					Body:       http.NoBody,
					Header:     make(http.Header),
					Request:    r,
				}, nil
			}),
		}

		// An empty body fails JSON decoding; only the transport use matters here.
		_, _ = NewHTTPWithClient("http://catalog.internal/product", client).Fetch(context.Background())
		if !used {
			t.Error("custom client transport was not used")
		}
	})

	t.Run("honors context cancellation", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := NewHTTP(server.URL).Fetch(ctx); err == nil {
			t.Fatal("expected error for cancelled context")
		}
	})
}

// roundTripFunc adapts a function to http.RoundTripper.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }
