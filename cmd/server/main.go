package main

import (
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/MostafaAmin07/super-productivity/internal/archive"
	"github.com/MostafaAmin07/super-productivity/internal/clock"
	"github.com/MostafaAmin07/super-productivity/internal/config"
	"github.com/MostafaAmin07/super-productivity/internal/logging"
	"github.com/MostafaAmin07/super-productivity/internal/model"
	"github.com/MostafaAmin07/super-productivity/internal/notify"
	"github.com/MostafaAmin07/super-productivity/internal/persistence"
	"github.com/MostafaAmin07/super-productivity/internal/project"
	"github.com/MostafaAmin07/super-productivity/internal/reminder"
	"github.com/MostafaAmin07/super-productivity/internal/repeatcfg"
	"github.com/MostafaAmin07/super-productivity/internal/scheduler"
	"github.com/MostafaAmin07/super-productivity/internal/server"
	"github.com/MostafaAmin07/super-productivity/internal/task"
	"github.com/MostafaAmin07/super-productivity/internal/workcontext"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to yaml config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Error("load config", slog.Any("error", err))
			os.Exit(1)
		}
		cfg = config.Default()
	}
	log := logging.New(cfg.Log)

	var persist persistence.Store
	if cfg.Data.SQLiteDSN != "" {
		sqlStore, err := persistence.NewSQLStore(cfg.Data.SQLiteDSN)
		if err != nil {
			log.Error("open persistence", slog.Any("error", err))
			os.Exit(1)
		}
		persist = sqlStore
	} else {
		log.Warn("no sqlite_dsn configured, state will not survive restarts")
		persist = persistence.NewMemoryStore()
	}

	tasks := task.NewMemoryStore()
	contexts := workcontext.NewStore()
	cfgs := repeatcfg.NewStore()
	arch := archive.NewStore()
	restore(log, persist, cfgs, arch, contexts)

	cl := clock.RealClock{}
	pointer := workcontext.NewPointer(cl)
	views := workcontext.NewService(contexts, tasks, pointer, cl)
	views.Notifier = notify.LogNotifier{Log: log}
	views.SettleWindow = time.Duration(cfg.Aggregation.SettleWindowMS) * time.Millisecond

	sched := &scheduler.Scheduler{
		Cfgs:      cfgs,
		Tasks:     tasks,
		Archive:   arch,
		Contexts:  contexts,
		Pointer:   pointer,
		Reminders: reminder.NewMemoryService(),
		Notifier:  views.Notifier,
		Persist:   persist,
		Clock:     cl,
		Log:       log,
	}
	projects := &project.Service{
		Contexts: contexts,
		Tasks:    tasks,
		Archive:  arch,
		Cfgs:     cfgs,
		Pointer:  pointer,
		Log:      log,
	}

	if cfg.Scheduler.HeartbeatEnabled {
		hb, err := scheduler.NewHeartbeat(sched, cfg.Scheduler.HeartbeatTime, log)
		if err != nil {
			log.Error("configure heartbeat", slog.Any("error", err))
			os.Exit(1)
		}
		hb.Start()
		defer hb.Stop()
	}

	app := &server.App{
		Cfg:      cfg,
		Log:      log,
		Tasks:    tasks,
		Contexts: contexts,
		Pointer:  pointer,
		Views:    views,
		Projects: projects,
		Cfgs:     cfgs,
		Sched:    sched,
	}
	if err := app.Run(); err != nil {
		log.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func restore(log *slog.Logger, persist persistence.Store, cfgs *repeatcfg.Store, arch *archive.Store, contexts *workcontext.Store) {
	if data, ok, err := persist.LoadState(persistence.KindTaskRepeatCfg); err != nil {
		log.Error("load repeat configs", slog.Any("error", err))
	} else if ok {
		var snap []model.TaskRepeatCfg
		if err := json.Unmarshal(data, &snap); err != nil {
			log.Error("decode repeat configs", slog.Any("error", err))
		} else {
			cfgs.Load(snap)
		}
	}

	if data, ok, err := persist.LoadState(persistence.KindTaskArchive); err != nil {
		log.Error("load archive", slog.Any("error", err))
	} else if ok {
		var snap model.TaskArchive
		if err := json.Unmarshal(data, &snap); err != nil {
			log.Error("decode archive", slog.Any("error", err))
		} else {
			arch.Load(snap)
		}
	}

	if data, ok, err := persist.LoadState(persistence.KindWorkContext); err != nil {
		log.Error("load work contexts", slog.Any("error", err))
	} else if ok {
		var snap []model.WorkContext
		if err := json.Unmarshal(data, &snap); err != nil {
			log.Error("decode work contexts", slog.Any("error", err))
		} else {
			contexts.Load(snap)
		}
	}
}
