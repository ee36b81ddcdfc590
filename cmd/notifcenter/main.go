package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/docopt/docopt-go"
	"github.com/golang/glog"

	"github.com/nhle/notification-center/internal/app"
	"github.com/nhle/notification-center/internal/model"
	"github.com/nhle/notification-center/internal/store"
)

const Version = "0.1.0"

func main() {
	usage := fmt.Sprintf(
		`Notification center.

The default config file is:
    %s

Usage:
    notifcenter [--config=<config>] [--db=<db>] [--open=<badge>]
        [--log_dir=<log_dir>] [-v=<level>]
    notifcenter -h | --help
    notifcenter --version

Options:
    -h --help              Show this screen.
    --version              Show version.
    --config=<config>      Config file.
    --db=<db>              Notification database. Overrides store.path.
    --open=<badge>         Open a badge on start: alert or message.
    --log_dir=<log_dir>    Directory for log files.
    -v=<level>             Log verbosity.`,
		model.DefaultConfigPath(),
	)

	opts, err := docopt.ParseArgs(usage, os.Args[1:], Version)
	if err != nil {
		panic(err)
	}

	initLogging(opts)
	defer glog.Flush()

	if err := run(opts); err != nil {
		glog.Errorf("[main]%s", err)
		glog.Flush()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initLogging hands the logging options to glog. glog writes to files so
// the terminal stays free for the UI.
func initLogging(opts docopt.Opts) {
	flag.CommandLine.Parse([]string{})
	if logDir, err := opts.String("--log_dir"); err == nil && logDir != "" {
		flag.Set("log_dir", logDir)
	}
	if level, err := opts.String("-v"); err == nil && level != "" {
		flag.Set("v", level)
	}
}

func run(opts docopt.Opts) error {
	configPath := model.DefaultConfigPath()
	if path, err := opts.String("--config"); err == nil && path != "" {
		configPath = path
	}

	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return err
	}
	// first run: leave a config file to edit
	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
		if err := model.SaveConfig(configPath, cfg); err != nil {
			glog.Warningf("[main]writing default config: %s", err)
		}
	}

	dbPath := cfg.Store.Path
	if path, err := opts.String("--db"); err == nil && path != "" {
		dbPath = path
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return fmt.Errorf("creating store directory: %w", err)
		}
	}

	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return err
	}
	defer s.Close()

	var open model.BadgeType
	if badge, err := opts.String("--open"); err == nil && badge != "" {
		switch model.BadgeType(badge) {
		case model.BadgeAlert, model.BadgeMessage:
			open = model.BadgeType(badge)
		default:
			return fmt.Errorf("unknown badge %q, use alert or message", badge)
		}
	}

	glog.Infof("[main]config=%s db=%s", configPath, dbPath)

	p := tea.NewProgram(app.New(cfg, s, app.Options{Open: open}), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running ui: %w", err)
	}
	return nil
}
