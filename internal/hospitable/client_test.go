package hospitable

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestClient(server *httptest.Server) *Client {
	return NewClient(ClientConfig{
		BaseURL: server.URL + "/v2",
		Token:   "test-token",
		Timeout: 5 * time.Second,
		Logger:  zerolog.Nop(),
	})
}

func TestClient_FetchReservations_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/v2/reservations" {
			t.Errorf("Expected /v2/reservations, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Errorf("Expected Bearer test-token, got %s", r.Header.Get("Authorization"))
		}

		q := r.URL.Query()
		checks := map[string]string{
			"per_page":     "100",
			"properties[]": "prop-1",
			"start_date":   "2024-01-01",
			"end_date":     "2024-01-31",
			"include":      "financials",
			"date_query":   "checkin",
		}
		for k, want := range checks {
			if got := q.Get(k); got != want {
				t.Errorf("query %s = %q, want %q", k, got, want)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"code":"HM1","platform":"airbnb","reservation_status":{"current":{"category":"accepted"}},
			"financials":{"host":{"accommodation":{"amount":1000},"guest_fees":[{"amount":50}]}}}],
			"meta":{"current_page":1,"last_page":1}}`))
	}))
	defer server.Close()

	resp, body, err := newTestClient(server).FetchReservations(context.Background(), ReservationQuery{
		PropertyID: "prop-1",
		StartDate:  "2024-01-01",
		EndDate:    "2024-01-31",
		DateQuery:  "checkin",
	})
	if err != nil {
		t.Fatalf("FetchReservations() error = %v", err)
	}
	if len(resp.Data) != 1 {
		t.Fatalf("expected 1 reservation, got %d", len(resp.Data))
	}
	r := resp.Data[0]
	if r.Code != "HM1" || r.Financials.Host.Accommodation.Amount != 1000 || len(r.Financials.Host.GuestFees) != 1 {
		t.Errorf("unexpected reservation %+v", r)
	}
	if !strings.Contains(string(body), `"meta"`) {
		t.Errorf("raw body should be returned verbatim")
	}
}

func TestClient_FetchReservations_NoDateQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.URL.Query()["date_query"]; ok {
			t.Errorf("date_query must be omitted when empty")
		}
		w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	resp, _, err := newTestClient(server).FetchReservations(context.Background(), ReservationQuery{PropertyID: "p"})
	if err != nil {
		t.Fatalf("FetchReservations() error = %v", err)
	}
	if len(resp.Data) != 0 {
		t.Errorf("expected no reservations, got %d", len(resp.Data))
	}
}

func TestClient_FetchReservations_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"message":"Unauthenticated."}`, "Unauthenticated."},
		{"server error", http.StatusInternalServerError, `oops`, "oops"},
		{"malformed body", http.StatusOK, `{"data": [`, "decode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, _, err := newTestClient(server).FetchReservations(context.Background(), ReservationQuery{PropertyID: "p"})
			if !errors.Is(err, ErrFetchFailed) {
				t.Fatalf("expected ErrFetchFailed, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q should contain %q", err, tt.wantMsg)
			}
		})
	}
}

func TestClient_APIErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"Forbidden"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server).ListProperties(context.Background())

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusForbidden {
		t.Errorf("StatusCode = %d", apiErr.StatusCode)
	}
}

func TestClient_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := newTestClient(server)
	server.Close()

	_, err := client.ListProperties(context.Background())
	if !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("expected ErrFetchFailed, got %v", err)
	}
}

func TestClient_ResolvePropertyID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/properties" {
			t.Errorf("Expected /v2/properties, got %s", r.URL.Path)
		}
		w.Write([]byte(`{"data":[
			{"id":"p-1","name":"Beach House"},
			{"id":"p-2","name":"Cabin"},
			{"id":"p-3","name":"Beach House"}
		]}`))
	}))
	defer server.Close()

	client := newTestClient(server)

	id, err := client.ResolvePropertyID(context.Background(), "Cabin")
	if err != nil || id != "p-2" {
		t.Errorf("ResolvePropertyID(Cabin) = %q, %v", id, err)
	}

	id, err = client.ResolvePropertyID(context.Background(), "Beach House")
	if err != nil || id != "p-3" {
		t.Errorf("ResolvePropertyID(Beach House) = %q, %v; want last match p-3", id, err)
	}

	_, err = client.ResolvePropertyID(context.Background(), "Castle")
	if !errors.Is(err, ErrPropertyNotFound) {
		t.Errorf("expected ErrPropertyNotFound, got %v", err)
	}
}

func TestDumpDebug(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "debug")

	path, err := DumpDebug(dir, "export_2024-01-01_to_2024-01-31", []byte(`{"data":[{"code":"HM1"}]}`))
	if err != nil {
		t.Fatalf("DumpDebug() error = %v", err)
	}
	if filepath.Base(path) != "export_2024-01-01_to_2024-01-31.json" {
		t.Errorf("path = %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "{\n    \"data\": [\n        {\n            \"code\": \"HM1\"\n        }\n    ]\n}"
	if string(data) != want {
		t.Errorf("pretty output = %q, want %q", data, want)
	}

	if _, err := DumpDebug(dir, "bad", []byte("not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}
