package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/PortalOS/backend/internal/host"
	"github.com/GriffinCanCode/PortalOS/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PortalOS/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/PortalOS/backend/internal/types"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in dev
	},
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 45 * time.Second
)

// Handler streams mount lifecycle events to connected shells
type Handler struct {
	host    *host.Manager
	logger  *logging.Logger
	metrics *monitoring.Metrics
}

// NewHandler creates a new WebSocket handler
func NewHandler(hostMgr *host.Manager, logger *logging.Logger) *Handler {
	return &Handler{
		host:   hostMgr,
		logger: logger,
	}
}

// WithMetrics attaches metrics collection
func (h *Handler) WithMetrics(m *monitoring.Metrics) *Handler {
	h.metrics = m
	return h
}

// HandleConnection handles WebSocket upgrade and event streaming
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	if h.metrics != nil {
		h.metrics.WSConnections.Inc()
		defer h.metrics.WSConnections.Dec()
	}

	var writeMu sync.Mutex
	send := func(v interface{}) error {
		data, err := sonic.Marshal(v)
		if err != nil {
			return err
		}
		writeMu.Lock()
		defer writeMu.Unlock()
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteMessage(websocket.TextMessage, data)
	}

	// Subscribe before the snapshot so no transition can slip between
	// the two.
	events, cancel := h.host.Subscribe()
	defer cancel()

	send(map[string]interface{}{
		"type":    "system",
		"message": "Connected to Portal Host (Go)",
	})
	send(map[string]interface{}{
		"type":     "snapshot",
		"bindings": h.host.List(),
	})

	done := make(chan struct{})

	// Forward lifecycle events and keep the connection alive.
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				if err := send(map[string]interface{}{
					"type":  "lifecycle",
					"event": ev,
				}); err != nil {
					return
				}
				if h.metrics != nil {
					h.metrics.RecordWSMessage("out", "lifecycle")
				}
			case <-ticker.C:
				writeMu.Lock()
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				err := conn.WriteMessage(websocket.PingMessage, nil)
				writeMu.Unlock()
				if err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()
	defer close(done)

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read error", zap.Error(err))
			}
			return
		}

		var msg types.WSMessage
		if err := sonic.Unmarshal(data, &msg); err != nil {
			send(map[string]interface{}{
				"type":    "error",
				"message": "malformed message",
			})
			continue
		}

		if h.metrics != nil {
			h.metrics.RecordWSMessage("in", msg.Type)
		}

		switch msg.Type {
		case "ping":
			send(map[string]interface{}{"type": "pong"})
		case "snapshot":
			send(map[string]interface{}{
				"type":     "snapshot",
				"bindings": h.host.List(),
			})
		default:
			send(map[string]interface{}{
				"type":    "error",
				"message": "unknown message type",
			})
		}
	}
}
