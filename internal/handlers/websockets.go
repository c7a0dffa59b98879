package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"storewatch/internal/service"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMsgSize     = 1 << 12 // 4 KB
	statusInterval = 2 * time.Second
)

// wsEnvelope frames every WebSocket message.
type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true }, // TODO: restrict origins for production
}

// wsReportStatus pushes a run's status every statusInterval until the
// run reaches a terminal state, then sends a final message and closes.
func (h *Handler) wsReportStatus(c *gin.Context) {
	reportID := c.Param("id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Reader goroutine to handle control frames and detect disconnects.
	done := make(chan struct{})
	go h.startReader(conn, done)

	ticker := time.NewTicker(statusInterval)
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ping.Stop()
	}()

	// Send the current status immediately, then on every tick.
	if terminal := h.sendReportStatus(c, conn, reportID); terminal {
		return
	}

	for {
		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ticker.C:
			if terminal := h.sendReportStatus(c, conn, reportID); terminal {
				return
			}
		}
	}
}

// sendReportStatus writes one status frame. Returns true when the run is
// terminal (or unknown) and the connection should close.
func (h *Handler) sendReportStatus(c *gin.Context, conn *websocket.Conn, reportID string) bool {
	result, err := h.services.Result(c.Request.Context(), reportID)

	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err != nil {
		msg := "failed to load report status"
		if errors.Is(err, service.ErrReportNotFound) {
			msg = "report not found"
		}
		_ = conn.WriteJSON(wsEnvelope{Type: "error", Error: msg})
		return true
	}

	payload := gin.H{"report_id": reportID, "status": result.State}
	if err := conn.WriteJSON(wsEnvelope{Type: "report_status", Data: payload}); err != nil {
		if h.log != nil {
			h.log.Infow("ws_write_failed", "report_id", reportID, "err", err)
		}
		return true
	}
	return result.State != service.ResultRunning
}

// startReader drains incoming frames so control messages are processed;
// closes done on disconnect.
func (h *Handler) startReader(conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
