package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func startHub(t *testing.T, routeID uint) (*Hub, *websocket.Conn) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	go hub.Run(ctx)
	t.Cleanup(cancel)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := hub.ServeWS(w, r, routeID); err != nil {
			t.Errorf("ServeWS: %v", err)
		}
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}
	return hub, conn
}

func TestHubDeliversEvents(t *testing.T) {
	hub, conn := startHub(t, 0)

	hub.Publish(Event{Type: EventAvailability, RouteID: 3, Data: map[string]bool{"available_today": false}})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got Event
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Type != EventAvailability || got.RouteID != 3 {
		t.Errorf("got %+v", got)
	}
	if got.At.IsZero() {
		t.Error("event timestamp not set")
	}
}

func TestHubFiltersByRoute(t *testing.T) {
	hub, conn := startHub(t, 5)

	hub.Publish(Event{Type: EventLocation, RouteID: 4})
	hub.Publish(Event{Type: EventDeleted, RouteID: 5})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got Event
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.RouteID != 5 || got.Type != EventDeleted {
		t.Errorf("subscriber for route 5 received %+v", got)
	}
}

func TestHubChecksOrigin(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := NewHub("http://app.example")
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// a rejected upgrade has already been answered
		_ = hub.ServeWS(w, r, 0)
	}))
	t.Cleanup(srv.Close)
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	cases := []struct {
		origin string
		ok     bool
	}{
		{"http://app.example", true},
		{"", true},
		{"http://evil.example", false},
	}
	for _, tc := range cases {
		header := http.Header{}
		if tc.origin != "" {
			header.Set("Origin", tc.origin)
		}
		conn, resp, err := websocket.DefaultDialer.Dial(url, header)
		if tc.ok {
			if err != nil {
				t.Errorf("origin %q: dial: %v", tc.origin, err)
				continue
			}
			conn.Close()
			continue
		}
		if err == nil {
			conn.Close()
			t.Errorf("origin %q: upgrade accepted", tc.origin)
			continue
		}
		if resp == nil || resp.StatusCode != http.StatusForbidden {
			t.Errorf("origin %q: response %v, want 403", tc.origin, resp)
		}
	}
}
