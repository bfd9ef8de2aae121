package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"
)

// Heartbeat triggers a daily scheduling pass at a fixed local time, so
// configs fire even when nobody navigates between contexts all day.
type Heartbeat struct {
	cron *cron.Cron
	log  *slog.Logger
}

// NewHeartbeat schedules s.Tick daily at the given "HH:MM" local time.
func NewHeartbeat(s *Scheduler, at string, log *slog.Logger) (*Heartbeat, error) {
	spec, err := buildDailySpec(at)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}

	c := cron.New()
	_, err = c.AddFunc(spec, func() {
		res, err := s.Tick(context.Background())
		if err != nil {
			log.Error("heartbeat pass failed", slog.Any("error", err))
			return
		}
		log.Info("heartbeat pass done",
			slog.Int("eligible", res.Eligible),
			slog.Int("created", res.Created),
			slog.Int("archived", res.Archived),
			slog.Int("failed", res.Failed))
	})
	if err != nil {
		return nil, fmt.Errorf("schedule heartbeat: %w", err)
	}
	return &Heartbeat{cron: c, log: log}, nil
}

func (h *Heartbeat) Start() {
	h.cron.Start()
	h.log.Info("heartbeat started")
}

func (h *Heartbeat) Stop() {
	h.cron.Stop()
	h.log.Info("heartbeat stopped")
}

// buildDailySpec turns "HH:MM" into a five-field cron spec.
func buildDailySpec(at string) (string, error) {
	parts := strings.Split(at, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid heartbeat time %q, want HH:MM", at)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid heartbeat hour in %q", at)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid heartbeat minute in %q", at)
	}
	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}
