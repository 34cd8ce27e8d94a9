package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"GlyphCore/internal/domain/models"
	"GlyphCore/internal/engine"
	"GlyphCore/internal/service/ratelimit"
	"GlyphCore/internal/usecase"
	xlogger "GlyphCore/pkg/logger"
)

func newTestEcho(t *testing.T, limiter *ratelimit.Limiter) *echo.Echo {
	t.Helper()
	svc := usecase.NewSignalService(engine.MustNew(), nil, nil, nil, xlogger.Nop())
	h := NewSignalsEchoHandler(xlogger.Nop(), svc, limiter, nil, StreamOptions{Window: 50})
	e := echo.New()
	h.RegisterRoutes(e)
	return e
}

func do(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

const rising = `{"values":[1,2,3,4,5,6,7,8,9,10,11,12]}`

func TestAnalyze_OK(t *testing.T) {
	e := newTestEcho(t, nil)
	rec := do(e, http.MethodPost, "/api/analyze", rising)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get(HeaderRequestID) == "" {
		t.Fatalf("missing request id header")
	}

	var resp struct {
		Status int                     `json:"status"`
		Data   models.AnalyzeResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.Signal.Direction != models.DirectionUp {
		t.Fatalf("direction: got %s", resp.Data.Signal.Direction)
	}
	if resp.Data.Cached {
		t.Fatalf("first call should not be cached")
	}
}

func TestAnalyze_RequestIDEchoed(t *testing.T) {
	e := newTestEcho(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(rising))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(HeaderRequestID, "req-42")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if got := rec.Header().Get(HeaderRequestID); got != "req-42" {
		t.Fatalf("request id: got %q", got)
	}
}

func TestAnalyze_Errors(t *testing.T) {
	e := newTestEcho(t, nil)
	cases := []struct {
		name string
		body string
		code string
	}{
		{"empty values", `{"values":[]}`, "ERR_MIN"},
		{"missing values", `{}`, "ERR_REQUIRED"},
		{"labels mismatch", `{"values":[1,2,3],"labels":["a","b"]}`, "ERR_LENGTH_MISMATCH"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(e, http.MethodPost, "/api/analyze", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status: got %d body %s", rec.Code, rec.Body.String())
			}
			var resp struct {
				Data []struct {
					Code string `json:"code"`
				} `json:"data"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(resp.Data) == 0 || resp.Data[0].Code != tc.code {
				t.Fatalf("code: want %s, got %s", tc.code, rec.Body.String())
			}
		})
	}
}

func TestRender_TextCanvas(t *testing.T) {
	e := newTestEcho(t, nil)
	rec := do(e, http.MethodPost, "/api/render", `{"values":[1,2,3,4,5,6,7,8,9,10,11,12],"width":40,"height":10}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("X-Glyph-Direction"); got != "UP" {
		t.Fatalf("direction header: got %q", got)
	}
	lines := strings.Split(strings.TrimSuffix(rec.Body.String(), "\n"), "\n")
	if len(lines) != 10 {
		t.Fatalf("lines: got %d", len(lines))
	}
	for i, l := range lines {
		if n := len([]rune(l)); n > 40 {
			t.Fatalf("line %d too wide: %d", i, n)
		}
	}
}

func TestRender_DefaultCanvasAndBadSize(t *testing.T) {
	e := newTestEcho(t, nil)
	rec := do(e, http.MethodPost, "/api/render", rising)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	if n := strings.Count(strings.TrimSuffix(rec.Body.String(), "\n"), "\n") + 1; n != 24 {
		t.Fatalf("default height: got %d lines", n)
	}

	rec = do(e, http.MethodPost, "/api/render", `{"values":[1,2],"width":-3}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("negative width: got %d", rec.Code)
	}
}

func TestRenderHTML(t *testing.T) {
	e := newTestEcho(t, nil)
	rec := do(e, http.MethodPost, "/api/render.html", rising)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(ct, echo.MIMETextHTML) {
		t.Fatalf("content type: got %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "echarts") {
		t.Fatalf("expected an echarts page")
	}
}

func TestHealth(t *testing.T) {
	e := newTestEcho(t, nil)
	rec := do(e, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"width":80`) {
		t.Fatalf("health: %d %s", rec.Code, rec.Body.String())
	}
}

func TestRateLimited(t *testing.T) {
	e := newTestEcho(t, ratelimit.New(1, 0.001))
	if rec := do(e, http.MethodPost, "/api/analyze", rising); rec.Code != http.StatusOK {
		t.Fatalf("first: got %d", rec.Code)
	}
	rec := do(e, http.MethodPost, "/api/analyze", rising)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second: got %d", rec.Code)
	}
	// health sits outside the limited group
	if rec := do(e, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Fatalf("health limited: got %d", rec.Code)
	}
}

func TestStream(t *testing.T) {
	svc := usecase.NewSignalService(engine.MustNew(), nil, nil, nil, xlogger.Nop())
	h := NewSignalsEchoHandler(xlogger.Nop(), svc, nil, nil, StreamOptions{Window: 5})
	e := echo.New()
	h.RegisterRoutes(e)
	srv := httptest.NewServer(e)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/stream?width=40&height=10"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	read := func() models.StreamFrame {
		t.Helper()
		var f models.StreamFrame
		if err := conn.ReadJSON(&f); err != nil {
			t.Fatalf("read: %v", err)
		}
		return f
	}

	for i := 1; i <= 7; i++ {
		if err := conn.WriteJSON(map[string]interface{}{"value": float64(i)}); err != nil {
			t.Fatalf("write: %v", err)
		}
		f := read()
		if f.Error != "" {
			t.Fatalf("point %d: unexpected error %s", i, f.Error)
		}
		want := min(i, 5)
		if f.Points != want {
			t.Fatalf("point %d: window got %d want %d", i, f.Points, want)
		}
		if n := strings.Count(f.Frame, "\n") + 1; n != 10 {
			t.Fatalf("point %d: frame lines %d", i, n)
		}
	}

	if err := conn.WriteJSON(map[string]interface{}{"label": "no value"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if f := read(); f.Error == "" || f.Points != 5 {
		t.Fatalf("missing value: got %+v", f)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if f := read(); f.Error == "" {
		t.Fatalf("malformed: expected error frame")
	}
}

func TestStream_BadCanvas(t *testing.T) {
	e := newTestEcho(t, nil)
	rec := do(e, http.MethodGet, "/api/stream?width=1000", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d", rec.Code)
	}
}
