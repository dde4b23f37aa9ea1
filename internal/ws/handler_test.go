package ws

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/PortalOS/backend/internal/host"
	"github.com/GriffinCanCode/PortalOS/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PortalOS/backend/internal/loader"
	"github.com/GriffinCanCode/PortalOS/backend/internal/remote"
	"github.com/GriffinCanCode/PortalOS/backend/internal/types"
)

type fakeContainer struct{}

func (c *fakeContainer) Get(ctx context.Context, name string) (*loader.Module, error) {
	if name != loader.ModuleBootstrap {
		return nil, fmt.Errorf("module %q: %w", name, loader.ErrModuleNotFound)
	}
	return &loader.Module{
		Mount: func(ctx context.Context, containerID string) (types.MountHandle, error) {
			return "handle", nil
		},
		Unmount: func(ctx context.Context, handle types.MountHandle) error {
			return nil
		},
	}, nil
}

type fakeLoader struct{}

func (l *fakeLoader) Fetch(ctx context.Context, url, scope string) (loader.Container, error) {
	return &fakeContainer{}, nil
}

func setupWS(t *testing.T) (*websocket.Conn, *host.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logging.NewNop()
	reg := remote.NewRegistry()
	resolver := remote.NewResolver(reg, &fakeLoader{}, logger)
	coord := remote.NewCoordinator(reg, resolver, logger)
	mgr := host.NewManager(resolver, coord, nil, logger)

	router := gin.New()
	router.GET("/stream", NewHandler(mgr, logger).HandleConnection)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn, mgr
}

func readMessage(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg map[string]interface{}
	require.NoError(t, sonic.Unmarshal(data, &msg))
	return msg
}

func TestConnectionGreeting(t *testing.T) {
	conn, _ := setupWS(t)

	msg := readMessage(t, conn)
	assert.Equal(t, "system", msg["type"])

	msg = readMessage(t, conn)
	assert.Equal(t, "snapshot", msg["type"])
}

func TestPingPong(t *testing.T) {
	conn, _ := setupWS(t)

	// Drain greeting
	readMessage(t, conn)
	readMessage(t, conn)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))

	msg := readMessage(t, conn)
	assert.Equal(t, "pong", msg["type"])
}

func TestUnknownMessageType(t *testing.T) {
	conn, _ := setupWS(t)

	readMessage(t, conn)
	readMessage(t, conn)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"launch-missiles"}`)))

	msg := readMessage(t, conn)
	assert.Equal(t, "error", msg["type"])
}

func TestMalformedMessage(t *testing.T) {
	conn, _ := setupWS(t)

	readMessage(t, conn)
	readMessage(t, conn)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{{{`)))

	msg := readMessage(t, conn)
	assert.Equal(t, "error", msg["type"])
}

func TestLifecycleEventsStreamed(t *testing.T) {
	conn, mgr := setupWS(t)

	readMessage(t, conn)
	readMessage(t, conn)

	require.NoError(t, mgr.Attach(context.Background(), "slot-a", "dashboard", "http://remotes.test/d.js"))

	// Loading then mounted
	var states []string
	for len(states) < 2 {
		msg := readMessage(t, conn)
		require.Equal(t, "lifecycle", msg["type"])

		event, ok := msg["event"].(map[string]interface{})
		require.True(t, ok)
		states = append(states, event["state"].(string))
	}

	assert.Equal(t, []string{"loading", "mounted"}, states)
}
