package commands

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/marcus/dispatch/internal/config"
	"github.com/marcus/dispatch/internal/db"
	"github.com/marcus/dispatch/internal/logging"
	"github.com/marcus/dispatch/internal/runner"
	"github.com/marcus/dispatch/internal/scheduler"
	"github.com/marcus/dispatch/internal/taskgraph"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run scheduled task graphs in the foreground",
	Long: `Run the configured task on a schedule (schedule.cron or
schedule.interval) until interrupted.

When started with an explicit --config path, the file is watched and
configuration changes are picked up without a restart.`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := logging.Default().WithComponent("daemon")

	task, err := taskgraph.Parse(cfg.Schedule.Task)
	if err != nil {
		return fmt.Errorf("schedule.task: %w (supported: %s)", err, taskNames())
	}

	store, err := db.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	_, graph, err := buildToolkit(cfg)
	if err != nil {
		return err
	}

	// The runner is swapped on config reload; job reads it under the lock.
	var mu sync.RWMutex
	active := runner.New(graph, store, logging.Default())

	job := func() {
		mu.RLock()
		r := active
		t := task
		mu.RUnlock()

		result, err := r.Run(cmd.Context(), t)
		if err != nil {
			log.Err(err, "scheduled run failed to start")
			return
		}
		if result.Err != nil {
			log.Err(result.Err, "scheduled run failed")
			return
		}
		log.Infof("scheduled run %d completed (%d steps)", result.RunID, len(result.Steps))
	}

	sched, err := scheduler.NewFromConfig(cfg.Schedule, job)
	if err != nil {
		return err
	}
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	if sched.CronExpr() != "" {
		log.Infof("daemon started, task %s on cron %q", task, sched.CronExpr())
	} else {
		log.Infof("daemon started, task %s every %s", task, sched.Interval())
	}

	configPath, _ := cmd.Flags().GetString("config")
	if configPath != "" {
		watcher, err := watchConfig(configPath, func() {
			newCfg, err := config.Load(configPath)
			if err != nil {
				log.Err(err, "config reload failed, keeping previous configuration")
				return
			}
			newTask, err := taskgraph.Parse(newCfg.Schedule.Task)
			if err != nil {
				log.Err(err, "config reload failed, keeping previous configuration")
				return
			}
			_, newGraph, err := buildToolkit(newCfg)
			if err != nil {
				log.Err(err, "config reload failed, keeping previous configuration")
				return
			}

			mu.Lock()
			active = runner.New(newGraph, store, logging.Default())
			task = newTask
			mu.Unlock()
			log.Info("configuration reloaded")
		})
		if err != nil {
			log.Err(err, "config watching disabled")
		} else {
			defer watcher.Close()
		}
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigs
	log.Infof("received %s, shutting down", sig)

	return nil
}

// watchConfig invokes onChange whenever path is written or recreated.
// Watches the parent directory because editors often replace the file.
func watchConfig(path string, onChange func()) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		watcher.Close()
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, err
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != abs {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					onChange()
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return watcher, nil
}
