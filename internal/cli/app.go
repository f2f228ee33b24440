/*
Package cli implements the duriancare commands.

Each command opens the app (configuration, record store, search index,
history and classifier), does its work and closes it again. Commands
stand in for the app's screens: home, assess, history and info.
*/
package cli

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/khanglvm/duriancare/internal/capture"
	"github.com/khanglvm/duriancare/internal/config"
	"github.com/khanglvm/duriancare/internal/history"
	"github.com/khanglvm/duriancare/internal/ripeness"
	"github.com/khanglvm/duriancare/internal/search"
	"github.com/khanglvm/duriancare/internal/storage"
)

// dotenvPath is loaded on top of the config file when present.
const dotenvPath = ".env"

// app holds the components shared by the commands.
type app struct {
	cfg        *config.Config
	kv         *storage.SQLiteKV
	store      *storage.RecordStore
	index      *search.Index
	history    *history.Manager
	classifier ripeness.Classifier
}

// openApp loads configuration and wires the components. A record store
// that cannot be opened is not fatal: history is empty and writes fail.
func openApp() (*app, error) {
	configPath, err := config.DefaultConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}

	cfg, err := config.LoadOrCreate(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.ApplyEnv(cfg, dotenvPath); err != nil {
		return nil, err
	}

	dbPath, err := cfg.DBPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get database path: %w", err)
	}

	kv := storage.NewSQLiteKV(dbPath)
	if err := kv.Init(); err != nil {
		log.Printf("Warning: storage unavailable, scans will not be saved")
	}
	store := storage.NewRecordStore(kv)

	index, err := search.NewIndex()
	if err != nil {
		log.Printf("Warning: search index unavailable, using plain filtering: %v", err)
		index = nil
	}

	classifier, err := ripeness.NewPlaceholder(ripeness.Options{
		MinScore: cfg.Classifier.MinScore,
		MaxScore: cfg.Classifier.MaxScore,
		Latency:  cfg.Latency(),
	})
	if err != nil {
		kv.Close()
		if index != nil {
			index.Close()
		}
		return nil, fmt.Errorf("failed to create classifier: %w", err)
	}

	return &app{
		cfg:        cfg,
		kv:         kv,
		store:      store,
		index:      index,
		history:    history.NewManager(store, index),
		classifier: classifier,
	}, nil
}

// newPipeline creates a capture pipeline for one assessment.
func (a *app) newPipeline() *capture.Pipeline {
	return capture.New(a.store, a.classifier, capture.Options{
		Quality:    a.cfg.Capture.Quality,
		Variety:    a.cfg.Capture.Variety,
		DateLayout: a.cfg.Capture.DateLayout,
		TimeLayout: a.cfg.Capture.TimeLayout,
	})
}

func (a *app) Close() {
	if a.index != nil {
		if err := a.index.Close(); err != nil {
			log.Printf("Warning: failed to close search index: %v", err)
		}
	}
	if err := a.kv.Close(); err != nil {
		log.Printf("Warning: failed to close database: %v", err)
	}
}

// prompter asks yes/no questions on the terminal.
type prompter struct {
	in        *bufio.Reader
	out       io.Writer
	assumeYes bool
}

func newPrompter(in io.Reader, out io.Writer, assumeYes bool) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out, assumeYes: assumeYes}
}

// Confirm asks a destructive question; anything but yes declines.
func (p *prompter) Confirm(prompt string) bool {
	return p.ask(prompt, false)
}

// ask prints prompt and reads the answer. An empty answer takes def.
func (p *prompter) ask(prompt string, def bool) bool {
	if p.assumeYes {
		return true
	}

	hint := "[y/N]"
	if def {
		hint = "[Y/n]"
	}
	fmt.Fprintf(p.out, "%s %s ", prompt, hint)

	response, _ := p.in.ReadString('\n')
	response = strings.TrimSpace(strings.ToLower(response))
	if response == "" {
		return def
	}
	return response == "y" || response == "yes"
}
