package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"GlyphCore/internal/domain/models"
	domrepo "GlyphCore/internal/domain/repository"
	"GlyphCore/internal/service/metrics"
	"GlyphCore/internal/service/ratelimit"
	"GlyphCore/internal/usecase"
	xhttp "GlyphCore/pkg/http"
	xlogger "GlyphCore/pkg/logger"
)

const (
	HeaderRequestID  = "X-Request-ID"
	HeaderDirection  = "X-Glyph-Direction"
	HeaderMomentum   = "X-Glyph-Momentum"
	HeaderRegime     = "X-Glyph-Regime"
	HeaderStrength   = "X-Glyph-Strength"
	HeaderConfidence = "X-Glyph-Confidence"
	HeaderPoints     = "X-Glyph-Points"
)

// SignalsEchoHandler serves the analyze, render and stream endpoints.
type SignalsEchoHandler struct {
	logger  *xlogger.Logger
	svc     *usecase.SignalService
	limiter *ratelimit.Limiter
	metrics domrepo.Metrics
	stream  StreamOptions
}

func NewSignalsEchoHandler(
	logger *xlogger.Logger,
	svc *usecase.SignalService,
	limiter *ratelimit.Limiter,
	rec domrepo.Metrics,
	stream StreamOptions,
) *SignalsEchoHandler {
	metrics.Register()
	if limiter == nil {
		limiter = ratelimit.New(0, 0)
	}
	return &SignalsEchoHandler{
		logger:  logger,
		svc:     svc,
		limiter: limiter,
		metrics: rec,
		stream:  stream.withDefaults(),
	}
}

func (h *SignalsEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	g := e.Group("/api", h.limiter.Middleware())
	g.POST("/analyze", h.Analyze)
	g.POST("/render", h.Render)
	g.POST("/render.html", h.RenderHTML)
	g.GET("/stream", h.Stream)
}

// ExposedHeaders lists the headers /api/render sets, so browser clients can
// read the classification next to the text frame.
func (h *SignalsEchoHandler) ExposedHeaders() []string {
	return []string{
		HeaderRequestID,
		HeaderDirection,
		HeaderMomentum,
		HeaderRegime,
		HeaderStrength,
		HeaderConfidence,
		HeaderPoints,
	}
}

func (h *SignalsEchoHandler) Health(c echo.Context) error {
	eng := h.svc.Engine()
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"status": "ok",
		"canvas": map[string]int{"width": eng.Width(), "height": eng.Height()},
	})
}

func (h *SignalsEchoHandler) Analyze(c echo.Context) error {
	const endpoint = "analyze"
	defer metrics.Observe(endpoint, time.Now())

	req := &models.AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		metrics.Fail(endpoint, "ERR_VALIDATION")
		return xhttp.BadRequestResponse(c, verr)
	}

	sig, cached, err := h.svc.Analyze(c.Request().Context(), h.input(c, req.Values, req.Labels))
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	return xhttp.SuccessResponse(c, models.AnalyzeResponse{Signal: sig, Cached: cached})
}

// Render answers with the text canvas itself; the classification travels in
// X-Glyph-* headers.
func (h *SignalsEchoHandler) Render(c echo.Context) error {
	const endpoint = "render"
	defer metrics.Observe(endpoint, time.Now())

	req := &models.RenderRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		metrics.Fail(endpoint, "ERR_VALIDATION")
		return xhttp.BadRequestResponse(c, verr)
	}

	frame, sig, err := h.svc.RenderTUI(c.Request().Context(), h.input(c, req.Values, req.Labels), req.Width, req.Height)
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	setSignalHeaders(c, sig)
	return c.String(http.StatusOK, frame+"\n")
}

func (h *SignalsEchoHandler) RenderHTML(c echo.Context) error {
	const endpoint = "render_html"
	defer metrics.Observe(endpoint, time.Now())

	req := &models.AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		metrics.Fail(endpoint, "ERR_VALIDATION")
		return xhttp.BadRequestResponse(c, verr)
	}

	var buf bytes.Buffer
	sig, err := h.svc.RenderHTML(c.Request().Context(), &buf, h.input(c, req.Values, req.Labels))
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	setSignalHeaders(c, sig)
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

func (h *SignalsEchoHandler) input(c echo.Context, values []float64, labels []string) usecase.SeriesInput {
	id := c.Request().Header.Get(HeaderRequestID)
	if id == "" {
		id = uuid.NewString()
	}
	c.Response().Header().Set(HeaderRequestID, id)
	return usecase.SeriesInput{RequestID: id, Source: usecase.SourceHTTP, Values: values, Labels: labels}
}

func (h *SignalsEchoHandler) fail(c echo.Context, endpoint string, err error) error {
	appErr := toAppError(err)
	metrics.Fail(endpoint, appErr.Code)
	if appErr.Status >= http.StatusInternalServerError {
		h.logger.Error("signal usecase error", xlogger.String("endpoint", endpoint), xlogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, appErr)
}

func toAppError(err error) *xhttp.AppError {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		return xhttp.NewAppError("ERR_INVALID_INPUT", "values", "values must be a non-empty list of finite numbers", http.StatusBadRequest).WithError(err)
	case errors.Is(err, models.ErrLengthMismatch):
		return xhttp.NewAppError("ERR_LENGTH_MISMATCH", "labels", "labels must have one entry per value", http.StatusBadRequest).WithError(err)
	case errors.Is(err, models.ErrConfiguration):
		return xhttp.NewAppError("ERR_CONFIGURATION", "", "invalid canvas or threshold settings", http.StatusBadRequest).WithError(err)
	default:
		return xhttp.InternalError("analysis failed").WithError(err)
	}
}

func setSignalHeaders(c echo.Context, sig models.Signal) {
	hd := c.Response().Header()
	hd.Set(HeaderDirection, string(sig.Direction))
	hd.Set(HeaderMomentum, string(sig.Momentum))
	hd.Set(HeaderRegime, string(sig.Regime))
	hd.Set(HeaderStrength, strconv.FormatFloat(sig.Strength, 'f', 4, 64))
	hd.Set(HeaderConfidence, strconv.FormatFloat(sig.Confidence, 'f', 4, 64))
	hd.Set(HeaderPoints, fmt.Sprint(sig.Len()))
}
