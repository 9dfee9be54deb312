package ginserver

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/vshulcz/hostdash/internal/domain"
	"github.com/vshulcz/hostdash/pkg/observer"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var (
	frameJSON = jsoniter.ConfigCompatibleWithStandardLibrary

	upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 16 * 1024,
	}
)

// Stream handles `GET /ws`: it sends the current window right away and then
// every window the monitor publishes. Slow clients only ever see the newest
// window; older undelivered ones are dropped.
func (h *Handler) Stream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	windows := make(chan domain.Window, 1)
	unsubscribe := h.svc.Subscribe(observer.ObserverFunc[domain.Window](func(_ context.Context, w domain.Window) error {
		offerLatest(windows, w)
		return nil
	}))
	defer unsubscribe()
	offerLatest(windows, h.svc.Window())

	closed := make(chan struct{})
	go readUntilClosed(conn, closed)

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			return
		case <-c.Request.Context().Done():
			return
		case w := <-windows:
			frame, err := frameJSON.Marshal(w)
			if err != nil {
				h.logger.Error("encode window frame", zap.Error(err))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				h.logger.Debug("websocket write failed", zap.Error(err))
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// offerLatest puts w into a one-slot channel, replacing a stale value.
func offerLatest(ch chan domain.Window, w domain.Window) {
	for {
		select {
		case ch <- w:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// readUntilClosed drains client frames so control messages are processed and
// closes done once the peer goes away.
func readUntilClosed(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
