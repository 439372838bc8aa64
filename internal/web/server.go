// internal/web/server.go - HTTP surface for the excluded presentation layer
package web

import (
    "context"
    "net/http"
    "sync"
    "time"

    "github.com/gin-gonic/gin"
    "github.com/prometheus/client_golang/prometheus/promhttp"
    "github.com/sirupsen/logrus"
    "aidiag/internal/config"
    "aidiag/internal/diag"
    "aidiag/internal/metrics"
    "aidiag/internal/store"
)

type Server struct {
    config     *config.Config
    configPath string
    engine     *diag.Engine
    store      *store.Store
    metrics    *metrics.Collector
    router     *gin.Engine
    server     *http.Server

    wsMu      sync.Mutex
    wsClients map[*WSClient]bool
}

func NewServer(cfg *config.Config, configPath string, engine *diag.Engine, historyStore *store.Store, metricsCollector *metrics.Collector) *Server {
    if cfg.Logging.Level != "debug" {
        gin.SetMode(gin.ReleaseMode)
    }

    router := gin.New()
    router.Use(gin.Logger())
    router.Use(gin.Recovery())
    router.Use(corsMiddleware())

    server := &Server{
        config:     cfg,
        configPath: configPath,
        engine:     engine,
        store:      historyStore,
        metrics:    metricsCollector,
        router:     router,
        wsClients:  make(map[*WSClient]bool),
    }

    server.setupRoutes()
    return server
}

func (s *Server) Start(ctx context.Context) error {
    s.server = &http.Server{
        Addr:         s.config.Web.Listen,
        Handler:      s.router,
        ReadTimeout:  s.config.Web.ReadTimeout,
        WriteTimeout: s.config.Web.WriteTimeout,
    }

    logrus.WithField("listen", s.config.Web.Listen).Info("Starting web server")

    go func() {
        if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
            logrus.WithError(err).Fatal("Failed to start web server")
        }
    }()

    return nil
}

func (s *Server) Stop(ctx context.Context) error {
    if s.server != nil {
        return s.server.Shutdown(ctx)
    }
    return nil
}

func (s *Server) setupRoutes() {
    s.router.GET("/", s.getReportText)

    api := s.router.Group("/api")
    {
        api.GET("/pass", s.getPass)
        api.POST("/run", s.runNow)
        api.GET("/errors", s.getErrors)
        api.GET("/report", s.getReportText)
        api.GET("/checks", s.getChecks)
        api.PUT("/checks/:id", s.updateCheck)
        api.PUT("/interval", s.updateInterval)
        api.GET("/history", s.getHistory)
        api.GET("/health", s.healthCheck)
    }

    s.router.GET("/ws", s.handleWebSocket)
    s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (s *Server) healthCheck(c *gin.Context) {
    c.JSON(http.StatusOK, gin.H{
        "status":    "healthy",
        "timestamp": time.Now(),
    })
}

func (s *Server) getPass(c *gin.Context) {
    pass := s.engine.CurrentPass()
    if pass == nil {
        c.JSON(http.StatusNotFound, gin.H{"error": "No diagnostic pass completed yet"})
        return
    }
    c.JSON(http.StatusOK, gin.H{
        "data":    pass,
        "version": s.engine.PassVersion(),
    })
}

func (s *Server) runNow(c *gin.Context) {
    s.engine.RunNow()
    c.JSON(http.StatusAccepted, gin.H{"status": "started"})
}

func (s *Server) getErrors(c *gin.Context) {
    entries := s.engine.ErrorLogEntries()
    c.JSON(http.StatusOK, gin.H{
        "data":  entries,
        "count": len(entries),
    })
}

func (s *Server) getReportText(c *gin.Context) {
    pass := s.engine.CurrentPass()
    if pass == nil {
        c.String(http.StatusNotFound, "No diagnostic pass completed yet\n")
        return
    }
    includeLog := c.Query("log") == "1"
    c.String(http.StatusOK, s.engine.RenderReport(pass, includeLog))
}

func (s *Server) getChecks(c *gin.Context) {
    checks := s.engine.Registry().List()
    c.JSON(http.StatusOK, gin.H{
        "data":  checks,
        "count": len(checks),
    })
}

func (s *Server) updateCheck(c *gin.Context) {
    id := c.Param("id")

    var req struct {
        Enabled bool `json:"enabled"`
    }
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }

    if err := s.engine.SetCheckEnabled(id, req.Enabled); err != nil {
        c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
        return
    }

    s.config.Checks[id] = req.Enabled
    s.saveSettings()

    c.JSON(http.StatusOK, gin.H{"data": gin.H{"id": id, "enabled": req.Enabled}})
}

func (s *Server) updateInterval(c *gin.Context) {
    var req struct {
        Interval string `json:"interval"` // e.g. "1m", "30s", "0" to disable
    }
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }

    interval, err := time.ParseDuration(req.Interval)
    if err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": "invalid duration"})
        return
    }

    if err := s.engine.SetRefreshInterval(interval); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }

    s.config.Monitoring.AutoRefresh = interval > 0
    if interval > 0 {
        s.config.Monitoring.RefreshInterval = interval
    }
    s.saveSettings()

    c.JSON(http.StatusOK, gin.H{"data": gin.H{"interval": interval.String()}})
}

func (s *Server) getHistory(c *gin.Context) {
    limit := s.config.History.MaxPasses
    passes, err := s.store.RecentPasses(limit)
    if err != nil {
        logrus.WithError(err).Error("Failed to read pass history")
        c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read history"})
        return
    }
    c.JSON(http.StatusOK, gin.H{
        "data":  passes,
        "count": len(passes),
    })
}

func (s *Server) saveSettings() {
    if err := config.Save(s.configPath, s.config); err != nil {
        logrus.WithError(err).Warn("Failed to persist settings")
    }
}

func corsMiddleware() gin.HandlerFunc {
    return func(c *gin.Context) {
        c.Header("Access-Control-Allow-Origin", "*")
        c.Header("Access-Control-Allow-Headers", "Content-Type, Accept, Origin, Cache-Control")
        c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")

        if c.Request.Method == "OPTIONS" {
            c.AbortWithStatus(204)
            return
        }

        c.Next()
    }
}
