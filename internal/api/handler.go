package api

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"dms-service/internal/models"
	"dms-service/internal/store"
	"dms-service/internal/syncer"
	"dms-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// SnapshotStore persists the shared document
type SnapshotStore interface {
	GetDocument(ctx context.Context) ([]byte, bool, error)
	PutDocument(ctx context.Context, snap models.Snapshot) error
	Ping(ctx context.Context) error
}

// SnapshotEvents announces stored documents
type SnapshotEvents interface {
	PublishSnapshotStored(ctx context.Context, event *models.SnapshotStoredEvent) error
}

// Handler contains HTTP handlers
type Handler struct {
	store  SnapshotStore
	events SnapshotEvents
	clock  func() time.Time
	logger *zap.Logger
}

// NewHandler creates a new HTTP handler. events may be nil.
func NewHandler(st SnapshotStore, events SnapshotEvents, logger *zap.Logger) *Handler {
	return &Handler{
		store:  st,
		events: events,
		clock:  time.Now,
		logger: util.LoggerOr(logger),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	data := router.Group("/api/data")
	{
		data.GET("", h.getData)
		data.POST("", h.putData)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   h.clock().Unix(),
	})
}

// readinessCheck reports ready once the database answers
func (h *Handler) readinessCheck(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unavailable",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   h.clock().Unix(),
	})
}

// getData returns the normalized document, storing it first when nothing was stored yet
func (h *Handler) getData(c *gin.Context) {
	ctx, span := util.StartSpan(c.Request.Context(), "Handler.GetData")
	defer span.End()

	payload, found, err := h.store.GetDocument(ctx)
	if err != nil {
		h.logger.Error("Failed to load document", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to load data",
			"details": err.Error(),
		})
		return
	}

	var doc models.SnapshotDocument
	if found {
		doc, err = syncer.DecodeDocument(payload, h.logger)
		if err != nil {
			h.logger.Warn("Stored document is unreadable, serving defaults", zap.Error(err))
		}
	}

	snap := store.Normalize(doc, h.clock())
	if !found {
		if err := h.store.PutDocument(ctx, snap); err != nil {
			h.logger.Error("Failed to store initial document", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to load data",
				"details": err.Error(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, snap)
}

// putData replaces the stored document with the posted one
func (h *Handler) putData(c *gin.Context) {
	ctx, span := util.StartSpan(c.Request.Context(), "Handler.PutData")
	defer span.End()

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "Invalid payload"})
		return
	}
	doc, err := syncer.DecodeDocument(body, h.logger)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "Invalid payload"})
		return
	}

	snap := store.Normalize(doc, h.clock())
	if err := h.store.PutDocument(ctx, snap); err != nil {
		h.logger.Error("Failed to store document", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"ok":      false,
			"error":   "Failed to save data",
			"details": err.Error(),
		})
		return
	}
	util.SnapshotsStoredTotal.Inc()

	if h.events != nil {
		event := &models.SnapshotStoredEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeSnapshotStored,
				Timestamp: h.clock(),
			},
			Counts:    snap.Counts(),
			UpdatedAt: snap.UpdatedAt,
		}
		if err := h.events.PublishSnapshotStored(ctx, event); err != nil {
			h.logger.Warn("Failed to publish snapshot event", zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
