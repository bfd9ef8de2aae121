package workcontext

import (
	"errors"
	"time"

	"github.com/MostafaAmin07/super-productivity/internal/clock"
	"github.com/MostafaAmin07/super-productivity/internal/model"
	"github.com/MostafaAmin07/super-productivity/internal/notify"
	"github.com/MostafaAmin07/super-productivity/internal/task"
)

var ErrNoActiveContext = errors.New("no active work context")

// DefaultSettleWindow is how long derived views are treated as
// provisional after a context transition. A tunable debounce, not a
// correctness requirement.
const DefaultSettleWindow = 50 * time.Millisecond

// Service computes the derived views over the task store and the active
// context pointer. Every view is a pure function of current store state,
// recomputed on read; there is no cached invalidation to get wrong.
type Service struct {
	Contexts *Store
	Tasks    task.Store
	Pointer  *Pointer
	Clock    clock.Clock
	Notifier notify.Notifier

	// SettleWindow overrides DefaultSettleWindow when > 0.
	SettleWindow time.Duration
}

func NewService(contexts *Store, tasks task.Store, pointer *Pointer, c clock.Clock) *Service {
	if c == nil {
		c = clock.RealClock{}
	}
	return &Service{
		Contexts: contexts,
		Tasks:    tasks,
		Pointer:  pointer,
		Clock:    c,
	}
}

func (s *Service) settleWindow() time.Duration {
	if s.SettleWindow > 0 {
		return s.SettleWindow
	}
	return DefaultSettleWindow
}

// IsContextChanging reports whether we are inside the settling window
// following a context transition. Views are provisional while true.
func (s *Service) IsContextChanging() bool {
	changedAt := s.Pointer.ChangedAt()
	if changedAt.IsZero() {
		return false
	}
	return s.Clock.Now().Sub(changedAt) < s.settleWindow()
}

// ActiveContext resolves the pointer against the context store.
func (s *Service) ActiveContext() (model.WorkContext, error) {
	ac, ok := s.Pointer.Active()
	if !ok {
		return model.WorkContext{}, ErrNoActiveContext
	}
	return s.Contexts.Get(ac.ID)
}

// ActiveIDIfProject fails when the active context is not a project; that
// is a caller-side logic bug, not a runtime condition to recover from.
func (s *Service) ActiveIDIfProject() (model.WorkContextID, error) {
	ac, ok := s.Pointer.Active()
	if !ok {
		return "", ErrNoActiveContext
	}
	if ac.Type != model.WorkContextProject {
		return "", ErrNotProjectContext
	}
	return ac.ID, nil
}

// TasksByIDs materializes an id list against the task store, resolving
// sub-tasks. Missing ids are skipped; a nil list is a malformed call.
func (s *Service) TasksByIDs(ids []model.TaskID) ([]model.TaskWithSubTasks, error) {
	if ids == nil {
		return nil, ErrInvalidArgument
	}
	out := make([]model.TaskWithSubTasks, 0, len(ids))
	for _, id := range ids {
		t, err := s.Tasks.Get(id)
		if err != nil {
			if errors.Is(err, task.ErrNotFound) {
				continue
			}
			return nil, err
		}
		tw := model.TaskWithSubTasks{Task: t}
		for _, subID := range t.SubTaskIDs {
			if sub, err := s.Tasks.Get(subID); err == nil {
				tw.SubTasks = append(tw.SubTasks, sub)
			}
		}
		out = append(out, tw)
	}
	return out, nil
}

func (s *Service) TodaysTasks() ([]model.TaskWithSubTasks, error) {
	ctx, err := s.ActiveContext()
	if err != nil {
		return nil, err
	}
	return s.TasksByIDs(ctx.TaskIDs)
}

func (s *Service) BacklogTasks() ([]model.TaskWithSubTasks, error) {
	ctx, err := s.ActiveContext()
	if err != nil {
		return nil, err
	}
	if ctx.BacklogTaskIDs == nil {
		return []model.TaskWithSubTasks{}, nil
	}
	return s.TasksByIDs(ctx.BacklogTaskIDs)
}

func (s *Service) UndoneTasks() ([]model.TaskWithSubTasks, error) {
	return s.todaysPartition(false)
}

func (s *Service) DoneTasks() ([]model.TaskWithSubTasks, error) {
	return s.todaysPartition(true)
}

func (s *Service) todaysPartition(done bool) ([]model.TaskWithSubTasks, error) {
	tasks, err := s.TodaysTasks()
	if err != nil {
		return nil, err
	}
	out := make([]model.TaskWithSubTasks, 0, len(tasks))
	for _, t := range tasks {
		if t.IsDone == done {
			out = append(out, t)
		}
	}
	return out, nil
}

// StartableTasks are the undone tasks a user can pick up right now: leaf
// tasks listed today, or sub-tasks whose parent is listed today.
func (s *Service) StartableTasks() ([]model.Task, error) {
	ctx, err := s.ActiveContext()
	if err != nil {
		return nil, err
	}
	inToday := make(map[model.TaskID]bool, len(ctx.TaskIDs))
	for _, id := range ctx.TaskIDs {
		inToday[id] = true
	}

	all, err := s.Tasks.All()
	if err != nil {
		return nil, err
	}
	out := make([]model.Task, 0)
	for _, t := range all {
		if t.IsDone {
			continue
		}
		if t.ParentID != nil {
			if inToday[*t.ParentID] {
				out = append(out, t)
			}
			continue
		}
		if inToday[t.ID] && !t.HasSubTasks() {
			out = append(out, t)
		}
	}
	return out, nil
}

// AllNonArchiveTasks is today + backlog for the active context.
func (s *Service) AllNonArchiveTasks() ([]model.TaskWithSubTasks, error) {
	today, err := s.TodaysTasks()
	if err != nil {
		return nil, err
	}
	backlog, err := s.BacklogTasks()
	if err != nil {
		return nil, err
	}
	return append(today, backlog...), nil
}

// TimeWorkedForDay sums the day bucket across today's tasks including
// sub-tasks. Missing buckets count as zero.
func (s *Service) TimeWorkedForDay(day string) (time.Duration, error) {
	tasks, err := s.TodaysTasks()
	if err != nil {
		return 0, err
	}
	var total time.Duration
	for _, t := range model.Flatten(tasks) {
		total += t.SpentOnDay(day)
	}
	return total, nil
}

// TimeEstimateRemainingForDay reconstructs "estimate remaining, adjusted
// for today's contribution to total spent": for every task touched today,
// max(0, estimate + spentToday - spentTotal).
func (s *Service) TimeEstimateRemainingForDay(day string) (time.Duration, error) {
	tasks, err := s.TodaysTasks()
	if err != nil {
		return 0, err
	}
	var total time.Duration
	for _, t := range model.Flatten(tasks) {
		spentToday := t.SpentOnDay(day)
		if spentToday <= 0 {
			continue
		}
		remaining := t.TimeEstimate + spentToday - t.TimeSpent
		if remaining > 0 {
			total += remaining
		}
	}
	return total, nil
}

// TasksWorkedOnOrDoneOrRepeatableFlat returns the flattened, deduplicated
// union of the repeatable families (all sub-tasks of tasks carrying a
// repeat config, regardless of day) and the tasks worked on or done that
// day. Tasks carrying a repeat config are excluded from the second group
// since the first already covers them.
func (s *Service) TasksWorkedOnOrDoneOrRepeatableFlat(day string) ([]model.Task, error) {
	all, err := s.AllNonArchiveTasks()
	if err != nil {
		return nil, err
	}

	repeatable := make([]model.TaskWithSubTasks, 0)
	for _, t := range all {
		if t.RepeatCfgID != nil {
			repeatable = append(repeatable, t)
		}
	}

	out := make([]model.Task, 0)
	seen := map[model.TaskID]bool{}
	add := func(t model.Task) {
		if !seen[t.ID] {
			seen[t.ID] = true
			out = append(out, t)
		}
	}

	for _, t := range model.Flatten(repeatable) {
		add(t)
	}
	for _, t := range model.Flatten(all) {
		if t.RepeatCfgID != nil {
			continue
		}
		if t.IsDone || t.SpentOnDay(day) > 0 {
			add(t)
		}
	}
	return out, nil
}

func (s *Service) WorkStart(day string) (int64, error) {
	ctx, err := s.ActiveContext()
	if err != nil {
		return 0, err
	}
	return ctx.WorkStart[day], nil
}

func (s *Service) WorkEnd(day string) (int64, error) {
	ctx, err := s.ActiveContext()
	if err != nil {
		return 0, err
	}
	return ctx.WorkEnd[day], nil
}

func (s *Service) BreakTime(day string) (time.Duration, error) {
	ctx, err := s.ActiveContext()
	if err != nil {
		return 0, err
	}
	return ctx.BreakTime[day], nil
}

func (s *Service) BreakNr(day string) (int, error) {
	ctx, err := s.ActiveContext()
	if err != nil {
		return 0, err
	}
	return ctx.BreakNr[day], nil
}

// AddTimeSpent records work on a task and keeps the day bookkeeping on
// its project current: the first log of a day stamps workStart, every
// log pushes workEnd forward.
func (s *Service) AddTimeSpent(taskID model.TaskID, day string, d time.Duration) (model.Task, error) {
	t, err := s.Tasks.AddTimeSpent(taskID, day, d)
	if err != nil {
		return model.Task{}, err
	}

	ctxID := t.ProjectID
	if ctxID == nil && t.ParentID != nil {
		if parent, err := s.Tasks.Get(*t.ParentID); err == nil {
			ctxID = parent.ProjectID
		}
	}
	if ctxID != nil {
		nowMS := s.Clock.Now().UnixMilli()
		if err := s.Contexts.SetWorkStart(*ctxID, day, nowMS); err != nil && !errors.Is(err, ErrNotFound) {
			return model.Task{}, err
		}
		if err := s.Contexts.SetWorkEnd(*ctxID, day, nowMS); err != nil && !errors.Is(err, ErrNotFound) {
			return model.Task{}, err
		}
	}
	return t, nil
}

// HasTasksToWorkOn reports whether any of today's tasks is still undone.
func (s *Service) HasTasksToWorkOn() (bool, error) {
	undone, err := s.UndoneTasks()
	if err != nil {
		return false, err
	}
	return len(undone) > 0, nil
}
