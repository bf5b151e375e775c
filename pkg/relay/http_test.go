package relay

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rooootdev/playit-ios/pkg/log"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*HTTPClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewHTTPClient(srv.URL, "test-key", srv.Client(), log.NewNoopLogger())
	return c, srv
}

func TestHTTPClient_Connect_Established(t *testing.T) {
	var gotAuth string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/v1/agents/rundata" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"status":"success","data":{"tunnels":[
			{"display_address":"old.example:1","disabled_reason":"migrated"},
			{"display_address":"1.2.3.4:5000","disabled_reason":null}
		]}}`))
	})

	sess, err := c.Connect(context.Background())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if sess.Address != "1.2.3.4:5000" {
		t.Errorf("address = %q, want the first enabled tunnel", sess.Address)
	}
	if gotAuth != "Agent-Key test-key" {
		t.Errorf("authorization header = %q", gotAuth)
	}
}

func TestHTTPClient_Connect_AuthRejected(t *testing.T) {
	for _, code := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		})

		_, err := c.Connect(context.Background())
		if !errors.Is(err, ErrAuthRejected) {
			t.Errorf("status %d: Connect() error = %v, want ErrAuthRejected", code, err)
		}
	}
}

func TestHTTPClient_Connect_ServerError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := c.Connect(context.Background())
	if err == nil {
		t.Fatal("Connect() error = nil, want transient error")
	}
	if errors.Is(err, ErrAuthRejected) {
		t.Error("server error must not map to ErrAuthRejected")
	}
}

func TestHTTPClient_Connect_NoActiveTunnel(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","data":{"tunnels":[]}}`))
	})

	_, err := c.Connect(context.Background())
	if err == nil {
		t.Fatal("Connect() error = nil, want error for empty tunnel list")
	}
}

func TestHTTPClient_PollHealth(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantLost bool
	}{
		{
			name: "healthy",
			body: `{"status":"success","data":{"tunnels":[{"display_address":"1.2.3.4:5000","disabled_reason":null}]}}`,
		},
		{
			name:     "all tunnels disabled",
			body:     `{"status":"success","data":{"tunnels":[{"display_address":"1.2.3.4:5000","disabled_reason":"suspended"}]}}`,
			wantLost: true,
		},
		{
			name:     "no tunnels",
			body:     `{"status":"success","data":{"tunnels":[]}}`,
			wantLost: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})

			err := c.PollHealth(context.Background(), &Session{Address: "1.2.3.4:5000"})
			if tt.wantLost {
				if !errors.Is(err, ErrSessionLost) {
					t.Errorf("PollHealth() = %v, want ErrSessionLost", err)
				}
			} else if err != nil {
				t.Errorf("PollHealth() = %v, want nil", err)
			}
		})
	}
}

func TestHTTPClient_CanceledContext(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","data":{"tunnels":[]}}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.Connect(ctx); err == nil {
		t.Error("Connect() with canceled context should fail")
	}
}
