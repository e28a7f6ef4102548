package supabase_test

import (
	"net/http"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/brickgo/crm-bfa-go/internal/infra/supabase"
)

func TestPollingFeed_SignalsOnChange(t *testing.T) {
	var mu sync.Mutex
	rows := `[{"id":"p-1","created_at":"2026-03-01T10:00:00Z"}]`

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		w.Write([]byte(rows))
	})

	feed := supabase.NewPollingFeed(client, 10*time.Millisecond, zap.NewNop())
	defer feed.Close()

	ch, cancel := feed.Subscribe("prospects")
	defer cancel()

	// Unchanged table: no signal expected.
	select {
	case <-ch:
		t.Fatal("signal without a change")
	case <-time.After(50 * time.Millisecond):
	}

	mu.Lock()
	rows = `[{"id":"p-2","created_at":"2026-03-02T09:00:00Z"},{"id":"p-1","created_at":"2026-03-01T10:00:00Z"}]`
	mu.Unlock()

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("no signal after the table changed")
	}
}

func TestPollingFeed_CancelClosesChannel(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	feed := supabase.NewPollingFeed(client, 10*time.Millisecond, zap.NewNop())
	defer feed.Close()

	ch, cancel := feed.Subscribe("prospects")
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("got a signal, want closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}
}
