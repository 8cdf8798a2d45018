// Package httpapi serves the monitor's live status over HTTP with gin.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/amartya2002/pingmonitor/uptime"
)

const defaultResultLimit = 50

// StatusSource is the read side of uptime.Monitor.
type StatusSource interface {
	Status() uptime.Status
	History(limit int) []uptime.Result
}

type StatusResponse struct {
	uptime.Status
	Outcome string `json:"outcome"`
}

type ResultResponse struct {
	Timestamp time.Time `json:"timestamp"`
	LatencyMS float64   `json:"latency_ms"`
	Status    string    `json:"status"`
	Rate      float64   `json:"rate"`
	Error     string    `json:"error,omitempty"`
	Events    []string  `json:"events,omitempty"`
}

type ResultsResponse struct {
	Target  uptime.Target    `json:"target"`
	Results []ResultResponse `json:"results"`
}

// NewRouter builds the gin engine. gatherer may be nil to omit /metrics.
func NewRouter(src StatusSource, gatherer prometheus.Gatherer, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	// Health check for API
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/status", func(c *gin.Context) {
		st := src.Status()
		c.JSON(http.StatusOK, StatusResponse{Status: st, Outcome: outcome(st)})
	})

	// Recent tick results, newest last
	r.GET("/results", func(c *gin.Context) {
		limit := defaultResultLimit
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
				return
			}
			limit = n
		}

		raw := src.History(limit)
		results := make([]ResultResponse, 0, len(raw))
		for _, res := range raw {
			rr := ResultResponse{
				Timestamp: res.Timestamp,
				LatencyMS: float64(res.Latency) / float64(time.Millisecond),
				Status:    map[bool]string{true: "UP", false: "DOWN"}[res.Success],
				Rate:      res.Rate,
				Error:     res.Error,
			}
			for _, e := range res.Events {
				rr.Events = append(rr.Events, string(e.Kind))
			}
			results = append(results, rr)
		}

		c.JSON(http.StatusOK, ResultsResponse{Target: src.Status().Target, Results: results})
	})

	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	return r
}

func outcome(st uptime.Status) string {
	switch {
	case st.Samples == 0:
		return "unknown"
	case st.Lost.Triggered:
		return "lost"
	case st.Degraded.Triggered:
		return "degraded"
	}
	return "ok"
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

// Server wraps the router in an http.Server with graceful shutdown.
type Server struct {
	srv    *http.Server
	logger *zap.Logger
}

func NewServer(addr string, src StatusSource, gatherer prometheus.Gatherer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(src, gatherer, logger),
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// ListenAndServe blocks until the server stops. A clean shutdown returns nil.
func (s *Server) ListenAndServe() error {
	s.logger.Info("Status server listening", zap.String("address", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
