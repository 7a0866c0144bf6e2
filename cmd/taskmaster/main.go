package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"

	"github.com/nhle/taskmaster/internal/app"
	"github.com/nhle/taskmaster/internal/kv"
	"github.com/nhle/taskmaster/internal/model"
	"github.com/nhle/taskmaster/internal/store"
)

func main() {
	configPath := model.DefaultConfigPath()
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	// Write the defaults on first run so there is a file to edit.
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := model.SaveConfig(configPath, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
			os.Exit(1)
		}
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "data directory: %v\n", err)
		os.Exit(1)
	}

	// The terminal belongs to the UI, so logs go to a file.
	logFile, err := os.OpenFile(cfg.LogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	log.SetOutput(logFile)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if os.Getenv("TASKMASTER_DEBUG") != "" {
		log.SetLevel(log.DebugLevel)
	}

	db, err := kv.Open(cfg.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "storage: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	users := store.NewUserStore(db)
	auth := store.NewAuthStore(db, users)
	tasks := store.NewTaskStore(db, auth)

	m := app.New(cfg, app.Stores{Users: users, Auth: auth, Tasks: tasks})

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "taskmaster: %v\n", err)
		os.Exit(1)
	}
}
