package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/field-medic/asset"
	"github.com/lixenwraith/field-medic/audio"
	"github.com/lixenwraith/field-medic/config"
	"github.com/lixenwraith/field-medic/engine"
	"github.com/lixenwraith/field-medic/injury"
	"github.com/lixenwraith/field-medic/input"
	"github.com/lixenwraith/field-medic/journal"
	"github.com/lixenwraith/field-medic/render"
	"github.com/lixenwraith/field-medic/session"
	"github.com/lixenwraith/field-medic/terminal"
)

var (
	scenarioFlag = flag.String("scenario", "", "Scenario YAML file, overrides FIELD_MEDIC_SCENARIO")
	muteFlag     = flag.Bool("mute", false, "Start with sound muted")
)

func main() {
	flag.Parse()

	env, err := config.Load()
	if err != nil {
		config.Exitf("config: %v", err)
	}
	if *scenarioFlag != "" {
		env.ScenarioPath = *scenarioFlag
	}

	// The screen owns stdout and stderr, logs go to a file or nowhere
	log, logFile, err := setupLogging(env.LogLevel, env.LogFile)
	if err != nil {
		config.Exitf("logging: %v", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}
	slog.SetDefault(log)

	if err := run(env, log); err != nil {
		config.Exitf("field-medic: %v", err)
	}
}

func run(env config.Env, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scn, err := asset.LoadScenario(env.ScenarioPath)
	if err != nil {
		return err
	}

	disposals := make(map[string]*injury.DisposalFlag)
	injuries, err := injury.BuildScenario(scn, asset.Graphs{Dir: env.GraphDir}, injury.Collaborators{
		Disposal: func(id string) injury.Disposal {
			d := &injury.DisposalFlag{}
			disposals[id] = d
			return d
		},
		Logger: log,
	})
	if err != nil {
		return err
	}
	outfit, err := scn.Patient.Outfit.Build()
	if err != nil {
		return err
	}

	// Audio is optional, the session runs silent without a device
	acfg := audio.DefaultConfig()
	acfg.Enabled = env.AudioEnabled && !*muteFlag
	acfg.MasterVolume = env.Volume
	sounds := audio.NewSoundManager(acfg)
	if err := sounds.Initialize(); err != nil {
		log.Warn("audio unavailable", "error", err)
	}
	defer sounds.Cleanup()

	id := session.NewID()
	var observers []session.Observer
	if env.JournalPath != "" {
		store, err := journal.Open(env.JournalPath, log)
		if err != nil {
			log.Warn("journal unavailable", "path", env.JournalPath, "error", err)
		} else {
			defer store.Close()
			if err := store.BeginSession(ctx, id, scn.Name); err != nil {
				return err
			}
			defer func() {
				if err := store.FinishSession(context.Background(), id); err != nil {
					log.Warn("journal finish failed", "error", err)
				}
			}()
			observers = append(observers, store.Observer())
		}
	}

	view := terminal.NewView()
	dispatch := input.NewDispatcher()
	sess, err := session.New(session.Options{
		ID:        id,
		Injuries:  injuries,
		Wardrobe:  outfit,
		Sink:      render.Fanout{view, audio.NewSink(sounds)},
		Source:    dispatch,
		Observers: observers,
		Logger:    log,
	})
	if err != nil {
		return err
	}
	defer sess.Close()

	sched := engine.NewScheduler(env.TickInterval, nil)
	sched.Add(dispatch)
	sched.Add(sess)

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()

	// Restore the terminal before printing a crash
	defer func() {
		if r := recover(); r != nil {
			screen.Fini()
			fmt.Fprintf(os.Stderr, "\nFIELD-MEDIC CRASHED: %v\nStack Trace:\n%s\n", r, debug.Stack())
			os.Exit(1)
		}
	}()

	app, err := terminal.New(terminal.Options{
		Screen:     screen,
		Session:    sess,
		Dispatcher: dispatch,
		Scheduler:  sched,
		View:       view,
		Disposals:  disposals,
		Muter:      sounds,
		DragScale:  env.DragScale,
		Logger:     log,
	})
	if err != nil {
		return err
	}

	err = app.Run(ctx)
	played, dropped := sounds.Stats()
	log.Info("session ended", "healed", sess.Healed(), "ticks", sched.Ticks(), "sounds", played, "sounds_dropped", dropped)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// setupLogging opens the log file when one is configured, otherwise logs are discarded
func setupLogging(level, path string) (*slog.Logger, *os.File, error) {
	if path == "" {
		log, err := config.NewLogger(level, io.Discard)
		return log, nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	log, err := config.NewLogger(level, f)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return log, f, nil
}
