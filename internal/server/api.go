package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MostafaAmin07/super-productivity/internal/model"
	"github.com/MostafaAmin07/super-productivity/internal/notify"
	"github.com/MostafaAmin07/super-productivity/internal/repeatcfg"
	"github.com/MostafaAmin07/super-productivity/internal/task"
	"github.com/MostafaAmin07/super-productivity/internal/workcontext"
	"github.com/MostafaAmin07/super-productivity/internal/worklog"
)

// Durations cross the wire as millisecond integers.
func ms(d time.Duration) int64 { return d.Milliseconds() }

func fromMS(v int64) time.Duration { return time.Duration(v) * time.Millisecond }

func fromMSPtr(v *int64) *time.Duration {
	if v == nil {
		return nil
	}
	d := fromMS(*v)
	return &d
}

func (a *App) today() string {
	return worklog.Str(a.Views.Clock.Now())
}

// --- navigation -------------------------------------------------------

type navigateRequest struct {
	Path string `json:"path" binding:"required"`
}

func (a *App) navigate(c *gin.Context) {
	var req navigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	active, ok := workcontext.ParseRoute(req.Path)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path must be project/<id> or tag/<id>"})
		return
	}
	if _, err := a.Contexts.Get(active.ID); err != nil {
		fail(c, err)
		return
	}

	changed := a.Pointer.SetActive(active.ID, active.Type)
	res, err := a.Sched.Tick(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	// Project activation kicks off a consistency scan once the views have
	// settled. Detection only; repair stays behind its own endpoint.
	if changed && active.Type == model.WorkContextProject {
		go func() {
			time.Sleep(a.settleWindow())
			if report, err := a.Views.FindOrphans(); err == nil && !report.Empty() {
				a.log().Warn("orphaned tasks in project lists",
					"contextId", report.ContextID,
					"today", report.Today,
					"backlog", report.Backlog)
				if a.Views.Notifier != nil {
					a.Views.Notifier.Notify(notify.KindError, "inconsistent project task lists detected", map[string]any{
						"contextId": report.ContextID,
						"today":     report.Today,
						"backlog":   report.Backlog,
					})
				}
			}
		}()
	}

	c.JSON(http.StatusOK, gin.H{"active": active, "changed": changed, "tick": res})
}

func (a *App) activeContext(c *gin.Context) {
	ctx, err := a.Views.ActiveContext()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ctx)
}

// --- contexts ---------------------------------------------------------

type titleRequest struct {
	Title string `json:"title" binding:"required"`
}

func (a *App) listContexts(c *gin.Context) {
	c.JSON(http.StatusOK, a.Contexts.All())
}

func (a *App) createProject(c *gin.Context) {
	var req titleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	proj, err := a.Projects.Create(req.Title)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, proj)
}

func (a *App) createTag(c *gin.Context) {
	var req titleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tag, err := a.Projects.CreateTag(req.Title)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, tag)
}

func (a *App) deleteProject(c *gin.Context) {
	if err := a.Projects.Delete(model.WorkContextID(c.Param("id"))); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *App) updateAdvancedCfg(c *gin.Context) {
	var data map[string]any
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id := model.WorkContextID(c.Param("id"))
	if err := a.Contexts.UpdateAdvancedCfg(id, c.Param("section"), data); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type breakRequest struct {
	Day        string `json:"day"`
	DurationMS int64  `json:"durationMs" binding:"required"`
}

func (a *App) addBreak(c *gin.Context) {
	var req breakRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	active, ok := a.Pointer.Active()
	if !ok {
		fail(c, workcontext.ErrNoActiveContext)
		return
	}
	day := req.Day
	if day == "" {
		day = a.today()
	}
	if err := a.Contexts.AddBreakTime(active.ID, day, fromMS(req.DurationMS)); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type repairRequest struct {
	Confirm bool `json:"confirm"`
}

func (a *App) repair(c *gin.Context) {
	var req repairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	report, err := a.Views.RepairActiveProject(
		workcontext.ConfirmerFunc(func(string) bool { return req.Confirm }))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report, "repaired": req.Confirm && !report.Empty()})
}

// --- tasks ------------------------------------------------------------

type createTaskRequest struct {
	Title          string   `json:"title" binding:"required"`
	ProjectID      string   `json:"projectId"`
	TagIDs         []string `json:"tagIds"`
	TimeEstimateMS int64    `json:"timeEstimateMs"`
	ToBacklog      bool     `json:"toBacklog"`
}

func (a *App) createTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t := model.Task{
		Title:        req.Title,
		TagIDs:       req.TagIDs,
		TimeEstimate: fromMS(req.TimeEstimateMS),
	}
	if req.ProjectID != "" {
		pid := model.WorkContextID(req.ProjectID)
		if _, err := a.Contexts.Get(pid); err != nil {
			fail(c, err)
			return
		}
		t.ProjectID = &pid
	}

	created, err := a.Tasks.Add(t)
	if err != nil {
		fail(c, err)
		return
	}
	if created.ProjectID != nil {
		var listErr error
		if req.ToBacklog {
			listErr = a.Contexts.AddToBacklog(*created.ProjectID, created.ID)
		} else {
			listErr = a.Contexts.AddToToday(*created.ProjectID, created.ID, true)
		}
		if listErr != nil {
			fail(c, listErr)
			return
		}
	}
	c.JSON(http.StatusCreated, created)
}

func (a *App) getTask(c *gin.Context) {
	got, err := a.Views.TasksByIDs([]model.TaskID{model.TaskID(c.Param("id"))})
	if err != nil {
		fail(c, err)
		return
	}
	if len(got) == 0 {
		fail(c, task.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, got[0])
}

type updateTaskRequest struct {
	Title          *string   `json:"title"`
	IsDone         *bool     `json:"isDone"`
	ProjectID      *string   `json:"projectId"`
	TagIDs         *[]string `json:"tagIds"`
	TimeEstimateMS *int64    `json:"timeEstimateMs"`
	RepeatCfgID    *string   `json:"repeatCfgId"`
	ReminderID     *string   `json:"reminderId"`
}

func (a *App) updateTask(c *gin.Context) {
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p := task.Patch{
		Title:        req.Title,
		IsDone:       req.IsDone,
		TagIDs:       req.TagIDs,
		TimeEstimate: fromMSPtr(req.TimeEstimateMS),
		ReminderID:   req.ReminderID,
	}
	if req.ProjectID != nil {
		pid := model.WorkContextID(*req.ProjectID)
		p.ProjectID = &pid
	}
	if req.RepeatCfgID != nil {
		rid := model.RepeatCfgID(*req.RepeatCfgID)
		p.RepeatCfgID = &rid
	}

	updated, err := a.Tasks.Update(model.TaskID(c.Param("id")), p)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (a *App) deleteTask(c *gin.Context) {
	id := model.TaskID(c.Param("id"))
	t, err := a.Tasks.Get(id)
	if err != nil {
		fail(c, err)
		return
	}
	gone := append([]model.TaskID{id}, t.SubTaskIDs...)
	a.Contexts.RemoveFromAllLists(gone)
	if err := a.Tasks.Remove(id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type createSubTaskRequest struct {
	Title          string `json:"title" binding:"required"`
	TimeEstimateMS int64  `json:"timeEstimateMs"`
}

func (a *App) createSubTask(c *gin.Context) {
	var req createSubTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sub, err := a.Tasks.AddSubTask(model.TaskID(c.Param("id")), model.Task{
		Title:        req.Title,
		TimeEstimate: fromMS(req.TimeEstimateMS),
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

type timeSpentRequest struct {
	Day        string `json:"day"`
	DurationMS int64  `json:"durationMs" binding:"required"`
}

func (a *App) addTimeSpent(c *gin.Context) {
	var req timeSpentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	day := req.Day
	if day == "" {
		day = a.today()
	}
	updated, err := a.Views.AddTimeSpent(model.TaskID(c.Param("id")), day, fromMS(req.DurationMS))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// --- repeat configs ---------------------------------------------------

type repeatCfgRequest struct {
	Title             string           `json:"title" binding:"required"`
	ProjectID         string           `json:"projectId"`
	TagIDs            []string         `json:"tagIds"`
	DefaultEstimateMS int64            `json:"defaultEstimateMs"`
	Days              model.RepeatDays `json:"days"`
}

func (r repeatCfgRequest) toModel() model.TaskRepeatCfg {
	cfg := model.TaskRepeatCfg{
		Title:           r.Title,
		TagIDs:          r.TagIDs,
		DefaultEstimate: fromMS(r.DefaultEstimateMS),
		Days:            r.Days,
	}
	if r.ProjectID != "" {
		pid := model.WorkContextID(r.ProjectID)
		cfg.ProjectID = &pid
	}
	return cfg
}

func (a *App) listRepeatCfgs(c *gin.Context) {
	c.JSON(http.StatusOK, a.Cfgs.All())
}

func (a *App) createRepeatCfg(c *gin.Context) {
	var req repeatCfgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cfg, err := a.Cfgs.Add(req.toModel())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, cfg)
}

type updateRepeatCfgRequest struct {
	Title             *string           `json:"title"`
	ProjectID         *string           `json:"projectId"`
	TagIDs            *[]string         `json:"tagIds"`
	DefaultEstimateMS *int64            `json:"defaultEstimateMs"`
	Days              *model.RepeatDays `json:"days"`
}

func (a *App) updateRepeatCfg(c *gin.Context) {
	var req updateRepeatCfgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p := repeatcfg.Patch{
		Title:           req.Title,
		TagIDs:          req.TagIDs,
		DefaultEstimate: fromMSPtr(req.DefaultEstimateMS),
		Days:            req.Days,
	}
	if req.ProjectID != nil {
		pid := model.WorkContextID(*req.ProjectID)
		p.ProjectID = &pid
	}
	cfg, err := a.Cfgs.Update(model.RepeatCfgID(c.Param("id")), p)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (a *App) deleteRepeatCfg(c *gin.Context) {
	if err := a.Sched.DeleteCfg(model.RepeatCfgID(c.Param("id"))); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *App) attachRepeatCfg(c *gin.Context) {
	var req repeatCfgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cfg, err := a.Sched.AttachCfgToTask(model.TaskID(c.Param("id")), req.toModel())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, cfg)
}

func (a *App) tick(c *gin.Context) {
	res, err := a.Sched.Tick(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// --- views ------------------------------------------------------------

func (a *App) viewToday(c *gin.Context) {
	got, err := a.Views.TodaysTasks()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, got)
}

func (a *App) viewBacklog(c *gin.Context) {
	got, err := a.Views.BacklogTasks()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, got)
}

func (a *App) viewUndone(c *gin.Context) {
	got, err := a.Views.UndoneTasks()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, got)
}

func (a *App) viewDone(c *gin.Context) {
	got, err := a.Views.DoneTasks()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, got)
}

func (a *App) viewStartable(c *gin.Context) {
	got, err := a.Views.StartableTasks()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, got)
}

// viewDaySummary bundles the per-day aggregates in one response.
func (a *App) viewDaySummary(c *gin.Context) {
	day := c.Param("day")

	worked, err := a.Views.TimeWorkedForDay(day)
	if err != nil {
		fail(c, err)
		return
	}
	remaining, err := a.Views.TimeEstimateRemainingForDay(day)
	if err != nil {
		fail(c, err)
		return
	}
	tasks, err := a.Views.TasksWorkedOnOrDoneOrRepeatableFlat(day)
	if err != nil {
		fail(c, err)
		return
	}
	workStart, err := a.Views.WorkStart(day)
	if err != nil {
		fail(c, err)
		return
	}
	workEnd, err := a.Views.WorkEnd(day)
	if err != nil {
		fail(c, err)
		return
	}
	breakTime, err := a.Views.BreakTime(day)
	if err != nil {
		fail(c, err)
		return
	}
	breakNr, err := a.Views.BreakNr(day)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"day":                 day,
		"timeWorkedMs":        ms(worked),
		"estimateRemainingMs": ms(remaining),
		"workStart":           workStart,
		"workEnd":             workEnd,
		"breakTimeMs":         ms(breakTime),
		"breakNr":             breakNr,
		"tasks":               tasks,
	})
}

func (a *App) viewChanging(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"isContextChanging": a.Views.IsContextChanging()})
}
