// Package webapi exposes the plugin manager's surface over HTTP: status,
// slot listing, install/uninstall, and the dynamically mounted
// per-instance plugin interfaces.
package webapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vk/pixelgridgo/internal/ctxlog"
	"github.com/vk/pixelgridgo/internal/display"
	"github.com/vk/pixelgridgo/internal/manager"
)

// Server serves the REST API for one device.
type Server struct {
	engine  *gin.Engine
	manager *manager.Manager
	display *display.Manager
	routes  *RouteTable
	version string
	started time.Time
}

// NewServer builds the API server around the given collaborators. The
// RouteTable must be the same one the manager registers web interfaces
// on.
func NewServer(logger *slog.Logger, m *manager.Manager, disp *display.Manager, routes *RouteTable, version string) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		engine:  gin.New(),
		manager: m,
		display: disp,
		routes:  routes,
		version: version,
		started: time.Now(),
	}

	s.engine.Use(gin.Recovery(), requestLogger(logger))

	api := s.engine.Group("/rest/api/v1")
	api.GET("/status", s.status)
	api.GET("/plugins", s.pluginTypes)
	api.GET("/display/slots", s.slots)
	api.POST("/display/slot", s.install)
	api.DELETE("/display/uid/:uid", s.uninstall)
	api.Any("/display/uid/:uid/*path", s.pluginInterface)

	return s
}

// Handler returns the server's http.Handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves the API on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.engine}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// requestLogger injects the server logger into each request context and
// logs the request outcome.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := ctxlog.WithLogger(c.Request.Context(), logger)
		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		c.Next()
		logger.Debug("Request handled.",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func (s *Server) status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"data": gin.H{
			"software": gin.H{
				"version": s.version,
			},
			"display": gin.H{
				"maxSlots":  s.display.MaxSlots(),
				"installed": s.manager.InstalledCount(),
			},
			"uptimeSeconds": int64(time.Since(s.started).Seconds()),
		},
	})
}

func (s *Server) pluginTypes(c *gin.Context) {
	names := make([]string, 0)
	for name := range s.manager.Types() {
		names = append(names, name)
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "data": gin.H{"plugins": names}})
}

type slotInfo struct {
	Slot   int    `json:"slot"`
	Name   string `json:"name"`
	UID    uint16 `json:"uid"`
	Active bool   `json:"active"`
}

func (s *Server) slots(c *gin.Context) {
	infos := make([]slotInfo, s.display.MaxSlots())
	for i := range infos {
		infos[i] = slotInfo{Slot: i}
		if p := s.display.OccupantOf(i); p != nil {
			infos[i].Name = p.Name()
			infos[i].UID = p.UID()
			infos[i].Active = p.Active()
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "data": gin.H{"slots": infos}})
}

type installRequest struct {
	Name string `json:"name" binding:"required"`
	Slot *int   `json:"slot"`
}

func (s *Server) install(c *gin.Context) {
	var req installRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": err.Error()})
		return
	}

	slot := manager.SlotAuto
	if req.Slot != nil {
		slot = *req.Slot
	}

	ctx := c.Request.Context()
	p := s.manager.Install(ctx, req.Name, slot)
	if p == nil {
		c.JSON(http.StatusConflict, gin.H{"status": "error", "error": "plugin could not be installed"})
		return
	}
	p.Enable()
	s.manager.Save(ctx)

	c.JSON(http.StatusOK, gin.H{"status": "ok", "data": gin.H{
		"uid":     p.UID(),
		"name":    p.Name(),
		"baseUri": manager.BaseURI(p.UID()),
	}})
}

func (s *Server) uninstall(c *gin.Context) {
	uid, ok := parseUID(c.Param("uid"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "invalid uid"})
		return
	}

	ctx := c.Request.Context()
	p := s.manager.FindByUID(uid)
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "error": "no such instance"})
		return
	}
	if !s.manager.Uninstall(ctx, p) {
		c.JSON(http.StatusConflict, gin.H{"status": "error", "error": "plugin could not be uninstalled"})
		return
	}
	s.manager.Save(ctx)

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) pluginInterface(c *gin.Context) {
	uid, ok := parseUID(c.Param("uid"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "invalid uid"})
		return
	}

	if !s.routes.serve(uid, c.Writer, c.Request) {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "error": "no such instance"})
	}
}

func parseUID(raw string) (uint16, bool) {
	v, err := strconv.ParseUint(raw, 10, 16)
	if err != nil {
		return 0, false
	}
	return uint16(v), true
}
