package app

import (
	"context"
	"fmt"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"tally/internal/config"
	"tally/internal/prefs"
	"tally/internal/push"
	"tally/internal/sync"
	"tally/internal/todo"
	"tally/internal/ui"
)

// Options configure the Tally application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/tally/prefs.toml
	Server     string // overrides the configured server address
	List       string // overrides the configured list id
	Mode       string // overrides the configured sync mode
	PollEvery  int    // seconds; zero uses the configured cadence
}

// resolveMode picks the sync mode by precedence: the -mode flag, then the
// config file, then the mode remembered from the last session, then the
// built-in default.
func resolveMode(flagMode, fileMode, prefMode string) string {
	for _, m := range []string{flagMode, fileMode, prefMode} {
		if m != "" {
			return m
		}
	}
	return config.DefaultMode
}

// Run boots the Tally TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.Server != "" {
		cfg.Server = opts.Server
	}
	if opts.List != "" {
		cfg.List = opts.List
	}
	if opts.PollEvery > 0 {
		cfg.PollSeconds = opts.PollEvery
	}

	userPrefs := prefs.Load(opts.PrefsPath)
	mode, err := sync.ParseMode(resolveMode(opts.Mode, cfg.Mode, userPrefs.Mode))
	if err != nil {
		return err
	}

	client, err := todo.NewClient(cfg.Server)
	if err != nil {
		return fmt.Errorf("init todo client: %w", err)
	}

	// Wake channel: the engine signals, the UI drains. A full channel
	// means a wake is already pending, which is enough.
	wake := make(chan struct{}, 1)
	notify := func() {
		select {
		case wake <- struct{}{}:
		default:
		}
	}

	engineOpts := sync.Options{
		Client:       client,
		Mode:         mode,
		ListID:       cfg.List,
		PollInterval: time.Duration(cfg.PollSeconds) * time.Second,
		Notify:       notify,
	}
	if mode == sync.ModePush {
		engineOpts.Events = push.NewConn(client.EventsURL())
	}

	engine, err := sync.New(engineOpts)
	if err != nil {
		return fmt.Errorf("init sync engine: %w", err)
	}
	defer engine.Close(context.WithoutCancel(ctx))

	if err := engine.Start(ctx); err != nil {
		// Push connect failures are recoverable; the status board carries
		// them and the transport keeps retrying on the next run.
		log.Printf("start sync engine: %v", err)
	}

	// Populate the store before the UI draws its first frame.
	if err := engine.Refresh(ctx); err != nil {
		log.Printf("initial refresh: %v", err)
	}

	model := ui.New(ui.Options{
		Context: ctx,
		Engine:  engine,
		Wake:    wake,
		Theme:   userPrefs.Theme,
	})

	program := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen())
	_, runErr := program.Run()

	// Remember the mode for the next session without a config or flag.
	userPrefs.Mode = string(mode)
	if err := prefs.Save(opts.PrefsPath, userPrefs); err != nil {
		log.Printf("save prefs: %v", err)
	}

	if runErr != nil {
		return fmt.Errorf("run ui: %w", runErr)
	}
	return nil
}
