// Package server exposes the HTTP API.
package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MostafaAmin07/super-productivity/internal/config"
	"github.com/MostafaAmin07/super-productivity/internal/project"
	"github.com/MostafaAmin07/super-productivity/internal/repeatcfg"
	"github.com/MostafaAmin07/super-productivity/internal/scheduler"
	"github.com/MostafaAmin07/super-productivity/internal/task"
	"github.com/MostafaAmin07/super-productivity/internal/workcontext"
)

// App holds everything the handlers depend on.
// This makes the wiring obvious at a glance.
type App struct {
	Cfg      *config.Config
	Log      *slog.Logger
	Tasks    task.Store
	Contexts *workcontext.Store
	Pointer  *workcontext.Pointer
	Views    *workcontext.Service
	Projects *project.Service
	Cfgs     *repeatcfg.Store
	Sched    *scheduler.Scheduler
}

func (a *App) log() *slog.Logger {
	if a.Log != nil {
		return a.Log
	}
	return slog.Default()
}

// Router builds the gin engine with all routes registered.
func (a *App) Router() *gin.Engine {
	if a.Cfg != nil && a.Cfg.Log.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.POST("/navigate", a.navigate)
		api.GET("/active-context", a.activeContext)

		api.GET("/contexts", a.listContexts)
		api.POST("/projects", a.createProject)
		api.DELETE("/projects/:id", a.deleteProject)
		api.POST("/tags", a.createTag)
		api.PUT("/contexts/:id/advanced-cfg/:section", a.updateAdvancedCfg)
		api.POST("/breaks", a.addBreak)
		api.POST("/repair", a.repair)

		api.POST("/tasks", a.createTask)
		api.GET("/tasks/:id", a.getTask)
		api.PATCH("/tasks/:id", a.updateTask)
		api.DELETE("/tasks/:id", a.deleteTask)
		api.POST("/tasks/:id/subtasks", a.createSubTask)
		api.POST("/tasks/:id/time", a.addTimeSpent)
		api.POST("/tasks/:id/repeat-cfg", a.attachRepeatCfg)

		api.GET("/repeat-cfgs", a.listRepeatCfgs)
		api.POST("/repeat-cfgs", a.createRepeatCfg)
		api.PATCH("/repeat-cfgs/:id", a.updateRepeatCfg)
		api.DELETE("/repeat-cfgs/:id", a.deleteRepeatCfg)
		api.POST("/scheduler/tick", a.tick)

		views := api.Group("/views")
		{
			views.GET("/today", a.viewToday)
			views.GET("/backlog", a.viewBacklog)
			views.GET("/undone", a.viewUndone)
			views.GET("/done", a.viewDone)
			views.GET("/startable", a.viewStartable)
			views.GET("/day/:day", a.viewDaySummary)
			views.GET("/changing", a.viewChanging)
		}
	}
	return r
}

// Run serves until the listener fails.
func (a *App) Run() error {
	addr := ":8080"
	if a.Cfg != nil && a.Cfg.Server.Addr != "" {
		addr = a.Cfg.Server.Addr
	}
	a.log().Info("http server listening", slog.String("addr", addr))
	return a.Router().Run(addr)
}

func (a *App) settleWindow() time.Duration {
	if a.Views != nil {
		if w := a.Views.SettleWindow; w > 0 {
			return w
		}
	}
	return workcontext.DefaultSettleWindow
}

// fail maps domain errors onto HTTP statuses.
func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, task.ErrNotFound),
		errors.Is(err, workcontext.ErrNotFound),
		errors.Is(err, repeatcfg.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, workcontext.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, workcontext.ErrNotProjectContext),
		errors.Is(err, workcontext.ErrNoActiveContext):
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
