package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jtg86/mbxadmin/internal/audit"
	"github.com/jtg86/mbxadmin/internal/config"
	"github.com/jtg86/mbxadmin/internal/directory/ldapdir"
	"github.com/jtg86/mbxadmin/internal/logging"
	"github.com/jtg86/mbxadmin/internal/session"
	"github.com/jtg86/mbxadmin/internal/tui"
)

func main() {
	envFile := flag.String("env", "", "path to env file (default: .env if present)")
	flag.Parse()

	if err := run(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(envFile string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}

	logFile, err := os.OpenFile(cfg.LogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open log file %s: %w", cfg.LogPath, err)
	}
	defer logFile.Close()
	log := logging.New(logFile, cfg.LogLevel)

	sink, err := audit.Open(cfg.AuditLogPath)
	if err != nil {
		return err
	}
	defer sink.Close()

	dir, err := ldapdir.New(cfg.Directory, log)
	if err != nil {
		return err
	}
	defer dir.Close()

	sess := session.New(dir, sink, log, session.Options{
		MinSearchLength: cfg.SearchMinLength,
		SearchCap:       cfg.SearchCap,
	})

	app := tui.NewAppModel(sess)
	if _, err := tea.NewProgram(&app, tea.WithAltScreen()).Run(); err != nil {
		return err
	}
	if app.Err != nil {
		return app.Err
	}
	return nil
}
