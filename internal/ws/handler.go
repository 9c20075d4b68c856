package ws

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/vos-cloud/vshell/internal/monitoring"
	"github.com/vos-cloud/vshell/internal/session"
	"github.com/vos-cloud/vshell/internal/shell"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in dev
	},
}

// Message is one client frame. Type is "execute", "interrupt" or "ping".
type Message struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id,omitempty"`
	Command   string `json:"command,omitempty"`
}

// Handler manages WebSocket shell connections.
type Handler struct {
	sessions *session.Manager
	interp   *shell.Interpreter
	metrics  *monitoring.Metrics
	log      *zap.Logger
}

func NewHandler(sessions *session.Manager, interp *shell.Interpreter, metrics *monitoring.Metrics, log *zap.Logger) *Handler {
	return &Handler{sessions: sessions, interp: interp, metrics: metrics, log: log}
}

// HandleConnection upgrades the request and serves shell frames until the
// client disconnects.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	h.metrics.IncWSConnections()
	defer h.metrics.DecWSConnections()

	reqCtx := c.Request.Context()

	h.send(conn, gin.H{
		"type":    "system",
		"message": "connected to vshell",
	})

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Debug("websocket read error", zap.Error(err))
			}
			return
		}

		switch msg.Type {
		case "execute":
			h.handleExecute(conn, reqCtx, msg)
		case "interrupt":
			h.handleInterrupt(conn, msg)
		case "ping":
			h.send(conn, gin.H{"type": "pong"})
		default:
			h.sendError(conn, "unknown message type")
		}
	}
}

func (h *Handler) handleExecute(conn *websocket.Conn, reqCtx context.Context, msg Message) {
	sess, err := h.sessions.Get(msg.SessionID)
	if err != nil {
		h.sendError(conn, err.Error())
		return
	}

	ctx, release, err := sess.BeginCommand(reqCtx)
	if err != nil {
		h.sendError(conn, err.Error())
		return
	}
	defer release()

	start := time.Now()
	res := h.interp.Run(ctx, sess, msg.Command)
	h.metrics.RecordCommand(firstToken(msg.Command), strconv.Itoa(res.Code), time.Since(start))

	h.send(conn, gin.H{
		"type":      "result",
		"stdout":    res.Stdout,
		"stderr":    res.Stderr,
		"exit_code": res.Code,
		"cwd":       sess.Cwd,
		"timestamp": time.Now().Unix(),
	})
}

func (h *Handler) handleInterrupt(conn *websocket.Conn, msg Message) {
	sess, err := h.sessions.Get(msg.SessionID)
	if err != nil {
		h.sendError(conn, err.Error())
		return
	}
	h.send(conn, gin.H{
		"type":        "interrupted",
		"interrupted": sess.Interrupt(),
	})
}

func firstToken(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func (h *Handler) send(conn *websocket.Conn, data any) {
	if err := conn.WriteJSON(data); err != nil {
		h.log.Debug("websocket write error", zap.Error(err))
	}
}

func (h *Handler) sendError(conn *websocket.Conn, msg string) {
	h.send(conn, gin.H{
		"type":      "error",
		"message":   msg,
		"timestamp": time.Now().Unix(),
	})
}
