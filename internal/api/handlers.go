// Package api serves the motion content over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/being-motion/spline"
	"github.com/being-motion/spline/internal/content"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// MotionResponse carries one named curve.
type MotionResponse struct {
	Name  string        `json:"name"`
	Curve *spline.BPoly `json:"curve"`
}

// namedCurve encodes as a [name, curve] pair.
type namedCurve struct {
	Name  string
	Curve *spline.BPoly
}

func (n namedCurve) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{n.Name, n.Curve})
}

// MotionsResponse lists all motions, most recently modified first.
type MotionsResponse struct {
	Type   string       `json:"type"`
	Curves []namedCurve `json:"curves"`
}

type Handlers struct {
	content *content.Content
	fit     spline.FitOptions
	logger  *slog.Logger
}

func NewHandlers(c *content.Content, fit spline.FitOptions, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{content: c, fit: fit, logger: logger}
}

// NewRouter returns a gin engine serving the API below /api and Prometheus
// metrics at /metrics.
func NewRouter(h *Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.observe)
	RegisterRoutes(router.Group("/api"), h)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return router
}

func RegisterRoutes(g *gin.RouterGroup, h *Handlers) {
	g.GET("/motions", h.HandleListMotions)
	g.POST("/motions", h.HandleCreateMotion)
	g.GET("/motions/:name", h.HandleGetMotion)
	g.PUT("/motions/:name", h.HandleUpdateMotion)
	g.POST("/motions/:name", h.HandleDuplicateMotion)
	g.DELETE("/motions/:name", h.HandleDeleteMotion)
	g.POST("/fit_spline", h.HandleFitSpline)
}

// observe tags requests with an id and records their latency.
func (h *Handlers) observe(c *gin.Context) {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)
	c.Set("logger", h.logger.With("request_id", requestID))

	start := time.Now()
	c.Next()

	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	requestDuration.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).
		Observe(time.Since(start).Seconds())
}

func requestLogger(c *gin.Context) *slog.Logger {
	if l, ok := c.Get("logger"); ok {
		return l.(*slog.Logger)
	}
	return slog.Default()
}

// fail maps content and curve errors to HTTP status codes.
func fail(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, content.ErrNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, content.ErrExists):
		status, code = http.StatusConflict, "EXISTS"
	case errors.Is(err, content.ErrInvalidName):
		status, code = http.StatusBadRequest, "INVALID_NAME"
	case errors.Is(err, content.ErrNoFreeName):
		status, code = http.StatusConflict, "NO_FREE_NAME"
	case errors.Is(err, spline.ErrTooFewSamples),
		errors.Is(err, spline.ErrShape),
		errors.Is(err, spline.ErrNotIncreasing),
		errors.Is(err, spline.ErrDiscontinuous),
		errors.Is(err, spline.ErrNonFinite),
		errors.Is(err, spline.ErrUnsupportedDegree):
		status, code = http.StatusBadRequest, "INVALID_CURVE"
	}
	if status == http.StatusInternalServerError {
		requestLogger(c).Error("request failed", "error", err)
	} else {
		requestLogger(c).Warn("request rejected", "error", err)
	}
	c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
}

func badRequest(c *gin.Context, err error) {
	requestLogger(c).Warn("invalid request body", "error", err)
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error(), Code: "INVALID_REQUEST"})
}

// HandleListMotions handles GET /api/motions.
func (h *Handlers) HandleListMotions(c *gin.Context) {
	motions, err := h.content.List()
	if err != nil {
		fail(c, err)
		return
	}
	resp := MotionsResponse{Type: "motions", Curves: make([]namedCurve, len(motions))}
	for i, m := range motions {
		resp.Curves[i] = namedCurve(m)
	}
	c.JSON(http.StatusOK, resp)
}

// HandleCreateMotion handles POST /api/motions. The new motion is a flat
// curve under a free name.
func (h *Handlers) HandleCreateMotion(c *gin.Context) {
	m, err := h.content.Create()
	if err != nil {
		fail(c, err)
		return
	}
	motionChanges.WithLabelValues("create").Inc()
	c.JSON(http.StatusCreated, MotionResponse(m))
}

// HandleGetMotion handles GET /api/motions/:name.
func (h *Handlers) HandleGetMotion(c *gin.Context) {
	curve, err := h.content.Load(c.Param("name"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, curve)
}

// HandleUpdateMotion handles PUT /api/motions/:name.
//
// With a rename query parameter the motion is renamed and the body is
// ignored. Otherwise the body is a curve replacing the stored one.
//
// Response:
//
//	200 OK: the stored curve
//	400 Bad Request: malformed curve or name
//	404 Not Found: unknown motion
//	409 Conflict: rename target exists
func (h *Handlers) HandleUpdateMotion(c *gin.Context) {
	name := c.Param("name")
	if !h.content.Exists(name) {
		fail(c, content.ErrNotFound)
		return
	}

	if newName, ok := c.GetQuery("rename"); ok {
		if err := h.content.Rename(name, newName); err != nil {
			fail(c, err)
			return
		}
		motionChanges.WithLabelValues("rename").Inc()
		h.respondMotion(c, newName)
		return
	}

	var curve spline.BPoly
	if err := c.ShouldBindJSON(&curve); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.content.Save(name, &curve); err != nil {
		fail(c, err)
		return
	}
	motionChanges.WithLabelValues("save").Inc()
	h.respondMotion(c, name)
}

func (h *Handlers) respondMotion(c *gin.Context, name string) {
	curve, err := h.content.Load(name)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, curve)
}

// HandleDuplicateMotion handles POST /api/motions/:name.
func (h *Handlers) HandleDuplicateMotion(c *gin.Context) {
	dup, err := h.content.Duplicate(c.Param("name"))
	if err != nil {
		fail(c, err)
		return
	}
	motionChanges.WithLabelValues("duplicate").Inc()
	curve, err := h.content.Load(dup)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, MotionResponse{Name: dup, Curve: curve})
}

// HandleDeleteMotion handles DELETE /api/motions/:name.
func (h *Handlers) HandleDeleteMotion(c *gin.Context) {
	if err := h.content.Delete(c.Param("name")); err != nil {
		fail(c, err)
		return
	}
	motionChanges.WithLabelValues("delete").Inc()
	c.Status(http.StatusNoContent)
}

// HandleFitSpline handles POST /api/fit_spline. The body is a list of
// [time, value] pairs; the response is the fitted curve. Nothing is stored.
func (h *Handlers) HandleFitSpline(c *gin.Context) {
	var pairs [][2]float64
	if err := c.ShouldBindJSON(&pairs); err != nil {
		badRequest(c, err)
		return
	}
	samples := make([]spline.Point, len(pairs))
	for i, p := range pairs {
		samples[i] = spline.Pt(p[0], p[1])
	}
	curve, err := spline.Fit(samples, h.fit)
	if err != nil {
		fail(c, err)
		return
	}
	fitKnots.Observe(float64(curve.KnotCount()))
	c.JSON(http.StatusOK, curve)
}
