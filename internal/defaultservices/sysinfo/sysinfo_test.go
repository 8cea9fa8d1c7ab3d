package sysinfo_test

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/z3phyrl/zeitop/internal/broker"
	"github.com/z3phyrl/zeitop/internal/defaultservices/sysinfo"
)

func startBroker(t *testing.T) string {
	t.Helper()
	b := broker.New(zerolog.Nop())
	server := httptest.NewServer(b)
	t.Cleanup(server.Close)
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestSysinfoAnswersKnownRequests(t *testing.T) {
	wsURL := startBroker(t)

	errCh := make(chan error, 1)
	go func() { errCh <- sysinfo.Run(wsURL) }()
	time.Sleep(50 * time.Millisecond)

	client, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	require.NoError(t, client.WriteMessage(websocket.TextMessage, []byte("dev1")))
	_, data, err := client.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, "@Ok", string(data))

	client.SetReadDeadline(time.Now().Add(2 * time.Second))

	require.NoError(t, client.WriteMessage(websocket.TextMessage, []byte("&sysinfo::uptime")))
	_, data, err = client.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, "uptime@sysinfo::0", string(data))

	require.NoError(t, client.WriteMessage(websocket.TextMessage, []byte("&sysinfo::cpu_count")))
	_, data, err = client.ReadMessage()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "cpu_count@sysinfo::"))
}

func TestSysinfoRejectsUnknownRequest(t *testing.T) {
	wsURL := startBroker(t)

	go sysinfo.Run(wsURL)
	time.Sleep(50 * time.Millisecond)

	client, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	require.NoError(t, client.WriteMessage(websocket.TextMessage, []byte("dev1")))
	_, _, err = client.ReadMessage()
	require.NoError(t, err)

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	require.NoError(t, client.WriteMessage(websocket.TextMessage, []byte("&sysinfo::bogus")))
	_, data, err := client.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, "bogus@sysinfo::!Invalid Request", string(data))
}
