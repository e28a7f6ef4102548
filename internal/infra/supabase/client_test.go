package supabase_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/brickgo/crm-bfa-go/internal/domain"
	"github.com/brickgo/crm-bfa-go/internal/infra/resilience"
	"github.com/brickgo/crm-bfa-go/internal/infra/supabase"
	"github.com/brickgo/crm-bfa-go/internal/port"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*supabase.Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := resilience.Config{MaxRetries: 0, InitialBackoff: time.Millisecond}
	client := supabase.NewClient(
		srv.Client(), srv.URL, "anon-key", "service-key",
		resilience.NewCircuitBreaker("test"), cfg, zap.NewNop(),
	)
	return client, srv
}

func TestListProspects(t *testing.T) {
	var gotPath, gotQuery, gotAPIKey, gotAuth string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAPIKey = r.Header.Get("apikey")
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[
			{"id":"p-1","first_name":"Jean","last_name":"Dupont","status":"new",
			 "assigned_to":"u-1",
			 "assigned_profile":{"first_name":"Awa","last_name":"Koné"},
			 "created_at":"2026-03-01T10:00:00Z"}
		]`))
	})

	list, err := client.ListProspects(context.Background(), port.ProspectFilter{Status: "new", Limit: 10})
	if err != nil {
		t.Fatalf("ListProspects: %v", err)
	}
	if gotPath != "/rest/v1/prospects" {
		t.Errorf("path = %q", gotPath)
	}
	for _, want := range []string{"order=created_at.desc", "status=eq.new", "limit=10", "assigned_profile"} {
		if !strings.Contains(gotQuery, want) {
			t.Errorf("query %q missing %q", gotQuery, want)
		}
	}
	if gotAPIKey != "anon-key" || gotAuth != "Bearer service-key" {
		t.Errorf("auth headers = %q / %q", gotAPIKey, gotAuth)
	}
	if len(list) != 1 {
		t.Fatalf("got %d rows", len(list))
	}
	if got := list[0].AssigneeName(); got != "Awa Koné" {
		t.Errorf("AssigneeName = %q, want joined profile name", got)
	}
}

func TestListProspects_EmptyResult(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	list, err := client.ListProspects(context.Background(), port.ProspectFilter{})
	if err != nil {
		t.Fatalf("ListProspects: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("got %d rows, want 0", len(list))
	}
}

func TestListProspects_ServerError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := client.ListProspects(context.Background(), port.ProspectFilter{})
	var extErr *domain.ErrExternalService
	if !errors.As(err, &extErr) {
		t.Fatalf("got %v, want ErrExternalService", err)
	}
}

func TestUpdateProspect_NotFound(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// PostgREST answers an empty array when the filter matched no rows.
		w.Write([]byte(`[]`))
	})

	_, err := client.UpdateProspect(context.Background(), "missing", map[string]any{"status": "won"})
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestGetSettings_MissingRowFallsBack(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	s, err := client.GetSettings(context.Background())
	if err != nil {
		t.Fatalf("GetSettings: %v", err)
	}
	if s.CurrencyCode != "XOF" || s.CurrencySymbol != "FCFA" {
		t.Errorf("settings = %+v, want XOF/FCFA defaults", s)
	}
}

func TestPasswordGrant_BadCredentials(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/token" {
			t.Errorf("path = %q", r.URL.Path)
		}
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	})

	_, err := client.PasswordGrant(context.Background(), "x@y.z", "wrong")
	var unauthorized *domain.ErrUnauthorized
	if !errors.As(err, &unauthorized) {
		t.Fatalf("got %v, want ErrUnauthorized", err)
	}
}

func TestPasswordGrant_Success(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("grant_type"); got != "password" {
			t.Errorf("grant_type = %q", got)
		}
		w.Write([]byte(`{"access_token":"tok","refresh_token":"ref","expires_in":3600,
			"user":{"id":"u-1","email":"x@y.z"}}`))
	})

	sess, err := client.PasswordGrant(context.Background(), "x@y.z", "pw")
	if err != nil {
		t.Fatalf("PasswordGrant: %v", err)
	}
	if sess.AccessToken != "tok" || sess.UserID != "u-1" {
		t.Errorf("session = %+v", sess)
	}
}

func TestCreateAuthUser_Duplicate(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"msg":"User already registered"}`, http.StatusUnprocessableEntity)
	})

	_, err := client.CreateAuthUser(context.Background(), &domain.CreateUserRequest{
		Email: "dup@brick.ci", Password: "secret1",
	})
	var conflict *domain.ErrConflict
	if !errors.As(err, &conflict) {
		t.Fatalf("got %v, want ErrConflict", err)
	}
}

func TestUploadThumbnail(t *testing.T) {
	var gotPath, gotUpsert string
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUpsert = r.Header.Get("x-upsert")
		w.WriteHeader(http.StatusOK)
	})

	url, err := client.UploadThumbnail(context.Background(), "pic.png", "image/png", []byte("png-bytes"))
	if err != nil {
		t.Fatalf("UploadThumbnail: %v", err)
	}
	if gotPath != "/storage/v1/object/thumbnails/pic.png" {
		t.Errorf("upload path = %q", gotPath)
	}
	if gotUpsert != "true" {
		t.Errorf("x-upsert = %q", gotUpsert)
	}
	want := srv.URL + "/storage/v1/object/public/thumbnails/pic.png"
	if url != want {
		t.Errorf("public url = %q, want %q", url, want)
	}
}
