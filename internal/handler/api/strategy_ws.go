package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"OptionStrat/internal/domain/models"
	"OptionStrat/internal/service/metrics"
	xhttp "OptionStrat/pkg/http"
	xlogger "OptionStrat/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	wsPingInterval = 30 * time.Second
	wsPongWait     = 60 * time.Second
	wsWriteWait    = 10 * time.Second
	wsMaxFrame     = 4 << 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// wsConn serializes writes; gorilla connections allow one concurrent writer.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsConn) writeJSON(v interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return w.conn.WriteJSON(v)
}

func (w *wsConn) ping() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait))
}

// ScanStream upgrades to a websocket where every text frame is a scan
// request and every reply is a scan response or a failure envelope.
func (h *StrategyEchoHandler) ScanStream(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.logger.Warn("websocket upgrade failed", xlogger.Error(err))
		return nil
	}
	defer conn.Close()

	metrics.WebsocketSessions.Inc()
	defer metrics.WebsocketSessions.Dec()

	ws := &wsConn{conn: conn}
	conn.SetReadLimit(wsMaxFrame)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		t := time.NewTicker(wsPingInterval)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				if err := ws.ping(); err != nil {
					return
				}
			}
		}
	}()

	ctx := c.Request().Context()
	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read failed", xlogger.Error(err))
			}
			return nil
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))

		reply := h.handleFrame(c, frame)
		if err := ws.writeJSON(reply); err != nil {
			h.logger.Warn("websocket write failed", xlogger.Error(err))
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (h *StrategyEchoHandler) handleFrame(c echo.Context, frame []byte) interface{} {
	start := time.Now()
	defer h.observe("ws_scan", start)

	req := &models.ScanRequest{}
	if err := json.Unmarshal(frame, req); err != nil {
		metrics.EndpointErrors.WithLabelValues("ws_scan").Inc()
		_, body := xhttp.ErrorBody(xhttp.BadRequestError("Invalid request body"))
		return body
	}
	ctx := c.Request().Context()
	if err := xhttp.ApplyAndValidate(ctx, req); err != nil {
		metrics.EndpointErrors.WithLabelValues("ws_scan").Inc()
		_, body := xhttp.ErrorBody(err)
		return body
	}
	resp, err := h.scan(ctx, req)
	if err != nil {
		var appErr *xhttp.AppError
		if !errors.As(err, &appErr) {
			h.logger.Error("websocket scan failed", xlogger.Error(err))
		}
		_, body := xhttp.ErrorBody(err)
		return body
	}
	return resp
}
