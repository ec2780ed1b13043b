package cloudflare

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/karstloch/dnspin/pkg/provider"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) (*Provider, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p, err := New(&Config{
		APIToken:    "test-token",
		APIEndpoint: server.URL,
	})
	if err != nil {
		t.Fatalf("creating provider: %v", err)
	}
	return p, server
}

func TestNew_RequiresToken(t *testing.T) {
	if _, err := New(&Config{}); err == nil {
		t.Error("expected error for missing api token")
	}
}

func TestNew(t *testing.T) {
	p, err := New(&Config{APIToken: "test-token"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name() != "cloudflare" {
		t.Errorf("expected provider name cloudflare, got %s", p.Name())
	}
}

func TestProvider_Ping(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user/tokens/verify" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		writeJSON(t, w, http.StatusOK, successResponse(map[string]interface{}{
			"id":     "token-id",
			"status": "active",
		}))
	})

	if err := p.Ping(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestProvider_Ping_Unauthorized(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusUnauthorized, errorResponse(10000, "Invalid API token"))
	})

	err := p.Ping(context.Background())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !provider.IsUnauthorized(err) {
		t.Errorf("expected unauthorized error, got %v", err)
	}

	var provErr *provider.ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected ProviderError, got %T", err)
	}
	if provErr.Provider != "cloudflare" || provErr.Operation != "verify token" {
		t.Errorf("unexpected error context: %+v", provErr)
	}
}

func TestProvider_LocateZone(t *testing.T) {
	zones := []map[string]interface{}{
		{"id": "zone-1", "name": "example.com", "status": "active"},
		{"id": "zone-2", "name": "example.org", "status": "active"},
		{"id": "zone-3", "name": "Mixed-Case.NET", "status": "active"},
	}

	tests := []struct {
		name       string
		fqdn       string
		wantZoneID string
	}{
		{
			name:       "subdomain maps to parent zone",
			fqdn:       "home.example.com",
			wantZoneID: "zone-1",
		},
		{
			name:       "deep subdomain maps to parent zone",
			fqdn:       "a.b.home.example.com",
			wantZoneID: "zone-1",
		},
		{
			name:       "bare apex maps to itself",
			fqdn:       "example.org",
			wantZoneID: "zone-2",
		},
		{
			name:       "zone name matched case-insensitively",
			fqdn:       "host.mixed-case.net",
			wantZoneID: "zone-3",
		},
		{
			name:       "trailing dot ignored",
			fqdn:       "home.example.com.",
			wantZoneID: "zone-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(t, w, http.StatusOK, pagedResponse(zones, 1, 1))
			})

			got, err := p.LocateZone(context.Background(), tt.fqdn)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.ID != tt.wantZoneID {
				t.Errorf("expected zone %s, got %s", tt.wantZoneID, got.ID)
			}
		})
	}
}

func TestProvider_LocateZone_NotFound(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, pagedResponse([]map[string]interface{}{
			{"id": "zone-1", "name": "example.com"},
		}, 1, 1))
	})

	_, err := p.LocateZone(context.Background(), "home.elsewhere.net")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !provider.IsZoneNotFound(err) {
		t.Errorf("expected zone-not-found error, got %v", err)
	}
}

func TestProvider_LocateZone_DuplicateZones(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, pagedResponse([]map[string]interface{}{
			{"id": "zone-1", "name": "example.com"},
			{"id": "zone-9", "name": "example.com"},
		}, 1, 1))
	})

	_, err := p.LocateZone(context.Background(), "home.example.com")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !provider.IsZoneNotFound(err) {
		t.Errorf("expected zone-not-found error for duplicate zones, got %v", err)
	}
}

func TestProvider_LocateZone_SecondPage(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "1":
			writeJSON(t, w, http.StatusOK, pagedResponse([]map[string]interface{}{
				{"id": "zone-1", "name": "example.org"},
			}, 1, 2))
		case "2":
			writeJSON(t, w, http.StatusOK, pagedResponse([]map[string]interface{}{
				{"id": "zone-2", "name": "example.com"},
			}, 2, 2))
		}
	})

	got, err := p.LocateZone(context.Background(), "home.example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "zone-2" {
		t.Errorf("expected zone on second page, got %+v", got)
	}
}

func TestProvider_ListRecords(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("type") != "A" {
			t.Errorf("expected type=A, got %s", r.URL.Query().Get("type"))
		}
		writeJSON(t, w, http.StatusOK, successResponse([]map[string]interface{}{
			{
				"id":      "rec-1",
				"type":    "A",
				"name":    "home.example.com",
				"content": "203.0.113.7",
				"ttl":     1,
				"proxied": true,
				"zone_id": "zone-123",
			},
		}))
	})

	records, err := p.ListRecords(context.Background(), "zone-123", "home.example.com", provider.RecordTypeA)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	rec := records[0]
	if rec.ID != "rec-1" || rec.ZoneID != "zone-123" {
		t.Errorf("unexpected record identity: %+v", rec)
	}
	if rec.Type != provider.RecordTypeA || rec.Content != "203.0.113.7" {
		t.Errorf("unexpected record data: %+v", rec)
	}
	if !rec.Proxied || rec.TTL != provider.TTLAuto {
		t.Errorf("unexpected record options: %+v", rec)
	}
}

func TestProvider_CreateRecord(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		writeJSON(t, w, http.StatusOK, successResponse(map[string]interface{}{
			"id":      "rec-new",
			"type":    "A",
			"name":    "home.example.com",
			"content": "203.0.113.7",
			"ttl":     1,
			"proxied": false,
			"zone_id": "zone-123",
		}))
	})

	created, err := p.CreateRecord(context.Background(), "zone-123", provider.RecordSpec{
		Name:    "home.example.com",
		Type:    provider.RecordTypeA,
		Content: "203.0.113.7",
		Proxied: false,
		TTL:     provider.TTLAuto,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID != "rec-new" || created.Content != "203.0.113.7" {
		t.Errorf("unexpected created record: %+v", created)
	}
}

func TestProvider_UpdateRecord(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		if r.URL.Path != "/zones/zone-123/dns_records/rec-1" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		writeJSON(t, w, http.StatusOK, successResponse(map[string]interface{}{
			"id":      "rec-1",
			"type":    "A",
			"name":    "home.example.com",
			"content": "198.51.100.4",
			"ttl":     1,
			"proxied": true,
			"zone_id": "zone-123",
		}))
	})

	updated, err := p.UpdateRecord(context.Background(), "zone-123", "rec-1", provider.RecordSpec{
		Name:    "home.example.com",
		Type:    provider.RecordTypeA,
		Content: "198.51.100.4",
		Proxied: true,
		TTL:     provider.TTLAuto,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.ID != "rec-1" || updated.Content != "198.51.100.4" {
		t.Errorf("unexpected updated record: %+v", updated)
	}
}

func TestProvider_UpdateRecord_NotFound(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusNotFound, errorResponse(81044, "Record does not exist."))
	})

	_, err := p.UpdateRecord(context.Background(), "zone-123", "rec-gone", provider.RecordSpec{
		Name:    "home.example.com",
		Type:    provider.RecordTypeA,
		Content: "203.0.113.7",
		TTL:     provider.TTLAuto,
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !provider.IsRecordNotFound(err) {
		t.Errorf("expected record-not-found error, got %v", err)
	}
}
