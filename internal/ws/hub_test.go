package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visitor-registry-backend/internal/model"
)

func TestHubBroadcastAndShutdown(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	runDone := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(runDone)
	}()

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Give the server-side registration a moment to land before broadcasting.
	time.Sleep(100 * time.Millisecond)

	hub.BroadcastCheckIn(&model.Visitor{ID: 1, FullName: "Jean Mukendi"}, "Meeting", false)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var event CheckInEvent
	require.NoError(t, json.Unmarshal(payload, &event))
	assert.Equal(t, "check_in", event.Type)
	require.NotNil(t, event.Visitor)
	assert.Equal(t, "Jean Mukendi", event.Visitor.FullName)
	assert.Equal(t, "Meeting", event.Purpose)
	assert.False(t, event.Returning)

	// Cancelling the context stops the hub and closes the connection; the
	// client's pumps must not hang on the unregister channel afterwards.
	cancel()
	select {
	case <-runDone:
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop on context cancellation")
	}

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
}

func TestServeWSRejectsAfterShutdown(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	runDone := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(runDone)
	}()
	cancel()
	<-runDone

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return // handshake already refused, nothing to leak
	}
	defer conn.Close()

	// The upgrade may succeed, but the connection is closed immediately
	// instead of being parked on a stopped hub.
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
}
