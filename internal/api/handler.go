package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/coldwatch/coldwatch/internal/auth"
	"github.com/coldwatch/coldwatch/internal/ingest"
	"github.com/coldwatch/coldwatch/internal/model"
	"github.com/coldwatch/coldwatch/internal/status"
	"github.com/coldwatch/coldwatch/internal/store"
)

// Store is the read/write surface the API needs.
type Store interface {
	Sensors(ctx context.Context) ([]model.Sensor, error)
	LatestReading(ctx context.Context, sensorID uint) (*model.SensorReading, error)
	Alerts(ctx context.Context, resolved *bool) ([]model.Alert, error)
	ResolveAlert(ctx context.Context, id uint, at time.Time) error
	UserByEmail(ctx context.Context, email string) (*model.User, error)
}

// Ingestor accepts sensor readings.
type Ingestor interface {
	Ingest(ctx context.Context, sensorID uint, ts time.Time, value float64) (*model.SensorReading, error)
}

// Check is one manually triggerable monitoring check.
type Check func(ctx context.Context) error

// Handler serves the REST API.
type Handler struct {
	store    Store
	ingestor Ingestor
	tokens   *auth.Service
	checks   map[string]Check
	alertWS  http.Handler
	engine   *gin.Engine
	now      func() time.Time
}

// New builds the router. checks maps check names (offline, power, door,
// expiry) to on-demand triggers; alertWS serves the live alert stream and may
// be nil.
func New(st Store, ing Ingestor, tokens *auth.Service, checks map[string]Check, alertWS http.Handler) *Handler {
	h := &Handler{
		store:    st,
		ingestor: ing,
		tokens:   tokens,
		checks:   checks,
		alertWS:  alertWS,
		now:      time.Now,
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", h.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/api/v1/auth/login", h.login)

	v1 := r.Group("/api/v1", tokens.Middleware())
	{
		v1.GET("/sensors/status", h.sensorsStatus)
		v1.GET("/alerts", h.listAlerts)
		v1.POST("/alerts/:id/resolve", h.resolveAlert)
		v1.POST("/sensors/:id/readings", h.ingestReading)
		v1.POST("/checks/:name/run", h.runCheck)
	}

	if alertWS != nil {
		r.GET("/ws/alerts", gin.WrapH(alertWS))
	}

	h.engine = r
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.engine.ServeHTTP(w, r)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password required"})
		return
	}

	u, err := h.store.UserByEmail(c.Request.Context(), req.Email)
	if err != nil || !auth.CheckPassword(u.HashedPassword, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := h.tokens.GenerateToken(u.ID, u.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "role": u.Role})
}

// sensorsStatus returns the dashboard status view for every sensor.
func (h *Handler) sensorsStatus(c *gin.Context) {
	ctx := c.Request.Context()
	sensors, err := h.store.Sensors(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list sensors failed"})
		return
	}

	now := h.now()
	views := make([]status.View, 0, len(sensors))
	for _, s := range sensors {
		latest, err := h.store.LatestReading(ctx, s.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "load reading failed"})
			return
		}
		views = append(views, status.Compute(s, latest, now))
	}
	c.JSON(http.StatusOK, views)
}

func (h *Handler) listAlerts(c *gin.Context) {
	var resolved *bool
	if q := c.Query("resolved"); q != "" {
		b, err := strconv.ParseBool(q)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "resolved must be a boolean"})
			return
		}
		resolved = &b
	}

	alerts, err := h.store.Alerts(c.Request.Context(), resolved)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list alerts failed"})
		return
	}
	c.JSON(http.StatusOK, alerts)
}

func (h *Handler) resolveAlert(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert id"})
		return
	}

	if err := h.store.ResolveAlert(c.Request.Context(), uint(id), h.now().UTC()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "alert not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "resolve failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"resolved": true})
}

type readingRequest struct {
	Timestamp *time.Time `json:"timestamp"`
	Value     float64    `json:"value"`
}

func (h *Handler) ingestReading(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sensor id"})
		return
	}

	var req readingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reading payload"})
		return
	}
	ts := h.now().UTC()
	if req.Timestamp != nil {
		ts = *req.Timestamp
	}

	reading, err := h.ingestor.Ingest(c.Request.Context(), uint(id), ts, req.Value)
	if err != nil {
		if errors.Is(err, ingest.ErrSensorNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "sensor not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ingest failed"})
		return
	}
	c.JSON(http.StatusCreated, reading)
}

// runCheck triggers one monitoring check outside its schedule.
func (h *Handler) runCheck(c *gin.Context) {
	name := c.Param("name")
	check, ok := h.checks[name]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown check"})
		return
	}
	if err := check(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ran": name})
}
