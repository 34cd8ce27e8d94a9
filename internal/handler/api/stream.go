package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"GlyphCore/internal/domain/models"
	"GlyphCore/internal/middleware"
	"GlyphCore/internal/service/metrics"
	xhttp "GlyphCore/pkg/http"
	xlogger "GlyphCore/pkg/logger"
	"GlyphCore/pkg/util"
)

const (
	maxStreamMessage = 4096
	writeWait        = 5 * time.Second
)

// StreamOptions tunes /api/stream sessions.
type StreamOptions struct {
	Window      int
	MinInterval time.Duration
	PingPeriod  time.Duration
}

func (o StreamOptions) withDefaults() StreamOptions {
	if o.Window <= 0 {
		o.Window = 120
	}
	if o.MinInterval < 0 {
		o.MinInterval = 0
	}
	return o
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Stream upgrades to a websocket. The client sends {"value":..,"label":..}
// points; the server answers with StreamFrame JSON each time the window is
// re-analyzed, at most once per MinInterval, plus a flush of anything still
// pending on every tick.
func (h *SignalsEchoHandler) Stream(c echo.Context) error {
	const endpoint = "stream"

	width := util.ParseIntDefault(c.QueryParam("width"), 0)
	height := util.ParseIntDefault(c.QueryParam("height"), 0)
	if width < 0 || height < 0 || width > 400 || height > 200 {
		metrics.Fail(endpoint, "ERR_BAD_REQUEST")
		return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("canvas %dx%d out of range", width, height))
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already wrote the error response.
		metrics.Fail(endpoint, "ERR_UPGRADE")
		h.logger.Warn("websocket upgrade failed", xlogger.Error(err))
		return nil
	}
	defer conn.Close()

	metrics.StreamSessions.Inc()
	defer metrics.StreamSessions.Dec()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	var writeMu sync.Mutex
	send := func(f models.StreamFrame) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(f)
	}
	ping := func() error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
	}

	session := h.svc.NewStreamSession(width, height, send)
	pipe := middleware.NewRealtimePipeline(session, h.metrics,
		middleware.WithWindow(h.stream.Window),
		middleware.WithMinInterval(h.stream.MinInterval),
	)

	conn.SetReadLimit(maxStreamMessage)
	if h.stream.PingPeriod > 0 {
		pongWait := h.stream.PingPeriod * 2
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
	} else {
		// drop the deadline the http server's ReadTimeout left on the conn
		_ = conn.SetReadDeadline(time.Time{})
	}

	done := make(chan struct{})
	defer close(done)
	go h.tick(ctx, done, pipe, ping)

	h.logger.Debug("stream session opened",
		xlogger.String("remote", c.RealIP()),
		xlogger.Int("width", width),
		xlogger.Int("height", height))

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("stream read failed", xlogger.Error(err))
			}
			return nil
		}

		var pt models.StreamPoint
		if err := json.Unmarshal(msg, &pt); err != nil {
			metrics.Fail(endpoint, "ERR_BAD_JSON")
			if err := send(models.StreamFrame{Points: pipe.Len(), Error: "malformed point: " + err.Error()}); err != nil {
				return nil
			}
			continue
		}
		if verrs := xhttp.ValidateValue(ctx, &pt); len(verrs) > 0 {
			metrics.Fail(endpoint, verrs[0].Code)
			if err := send(models.StreamFrame{Points: pipe.Len(), Error: describe(verrs)}); err != nil {
				return nil
			}
			continue
		}

		if _, err := pipe.Push(ctx, pt); err != nil {
			if errors.Is(err, models.ErrInvalidInput) {
				metrics.Fail(endpoint, "ERR_INVALID_INPUT")
				if err := send(models.StreamFrame{Points: pipe.Len(), Error: err.Error()}); err != nil {
					return nil
				}
				continue
			}
			// the processor only fails when the frame could not be written
			h.logger.Debug("stream write failed", xlogger.Error(err))
			return nil
		}
	}
}

// tick flushes throttled points and keeps the connection alive until done.
func (h *SignalsEchoHandler) tick(ctx context.Context, done <-chan struct{}, pipe *middleware.RealtimePipeline, ping func() error) {
	var flushC, pingC <-chan time.Time
	if h.stream.MinInterval > 0 {
		t := time.NewTicker(h.stream.MinInterval)
		defer t.Stop()
		flushC = t.C
	}
	if h.stream.PingPeriod > 0 {
		t := time.NewTicker(h.stream.PingPeriod)
		defer t.Stop()
		pingC = t.C
	}

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-flushC:
			if _, err := pipe.Flush(ctx); err != nil {
				h.logger.Debug("stream flush failed", xlogger.Error(err))
				return
			}
		case <-pingC:
			if err := ping(); err != nil {
				return
			}
		}
	}
}

func describe(verrs []xhttp.ValidationError) string {
	parts := make([]string, 0, len(verrs))
	for _, v := range verrs {
		parts = append(parts, v.Field+": "+v.Message)
	}
	return strings.Join(parts, "; ")
}
