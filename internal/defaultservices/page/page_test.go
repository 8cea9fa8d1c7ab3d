package page_test

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/z3phyrl/zeitop/internal/broker"
	"github.com/z3phyrl/zeitop/internal/defaultservices/page"
)

func startBroker(t *testing.T) string {
	t.Helper()
	b := broker.New(zerolog.Nop())
	server := httptest.NewServer(b)
	t.Cleanup(server.Close)
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestPageSanitizesScriptTags(t *testing.T) {
	wsURL := startBroker(t)

	go page.Run(wsURL)
	time.Sleep(50 * time.Millisecond)

	client, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	require.NoError(t, client.WriteMessage(websocket.TextMessage, []byte("dev1")))
	_, _, err = client.ReadMessage()
	require.NoError(t, err)

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	req := "&page::render:<p>hi</p><script>alert(1)</script>"
	require.NoError(t, client.WriteMessage(websocket.TextMessage, []byte(req)))

	_, data, err := client.ReadMessage()
	require.NoError(t, err)
	// The reply echoes the original request text before "@page::", so
	// only the payload after it is the sanitized document.
	_, payload, found := strings.Cut(string(data), "@page::")
	require.True(t, found)
	require.Contains(t, payload, "<p>hi</p>")
	require.NotContains(t, payload, "<script>")
}

func TestPageRejectsMissingPrefix(t *testing.T) {
	wsURL := startBroker(t)

	go page.Run(wsURL)
	time.Sleep(50 * time.Millisecond)

	client, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	require.NoError(t, client.WriteMessage(websocket.TextMessage, []byte("dev1")))
	_, _, err = client.ReadMessage()
	require.NoError(t, err)

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	require.NoError(t, client.WriteMessage(websocket.TextMessage, []byte("&page::not-prefixed")))
	_, data, err := client.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, "not-prefixed@page::!Invalid Page", string(data))
}
