package cmd

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/chriserin/strparse/internal/config"
	"github.com/chriserin/strparse/internal/db"
	"github.com/chriserin/strparse/internal/logging"
	"github.com/chriserin/strparse/internal/markup"
	"github.com/chriserin/strparse/internal/parser"
)

// session bundles what every parsing command needs: the loaded
// configuration and a logger honoring it.
type session struct {
	cfg    *config.Config
	logger *slog.Logger
}

func newSession(stderr io.Writer) (*session, error) {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return nil, err
	}
	if strictFlag {
		cfg.Strict = true
	}
	if logLevelFlag != "" {
		cfg.LogLevel = logLevelFlag
		if err := config.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return &session{cfg: cfg, logger: logging.New(stderr, cfg.Level(), logging.LogFormat(cfg.LogFormat))}, nil
}

func initialized() bool {
	_, err := os.Stat(config.DefaultDir)
	return err == nil
}

func requireInit() error {
	if !initialized() {
		return fmt.Errorf("run `strparse init` first")
	}
	return nil
}

func (s *session) openDB() (*sql.DB, error) {
	sqlDB, err := db.Open(s.cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return sqlDB, nil
}

// parseFile parses path with the markup grammar. With render set the
// result carries HTML output instead of a tree. Every attempt is recorded
// when the project is initialized.
func (s *session) parseFile(path string, render bool) (*parser.Result, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	g, err := markup.New(s.cfg.GrammarOptions(render))
	if err != nil {
		return nil, err
	}
	e, err := markup.NewEngine(g, parser.WithStrict(s.cfg.Strict), parser.WithLogger(s.logger))
	if err != nil {
		return nil, err
	}

	res, parseErr := e.Parse(string(content))
	s.logger.Debug("parsed file", "path", path, "strict", s.cfg.Strict, "error", parseErr)

	if err := s.record(path, g, res, parseErr); err != nil {
		return nil, errors.Join(parseErr, err)
	}
	if parseErr != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, parseErr)
	}
	return res, nil
}

func (s *session) record(path string, g *markup.Grammar, res *parser.Result, parseErr error) error {
	if !initialized() {
		return nil
	}
	sqlDB, err := s.openDB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	run := db.Run{FilePath: path, Strict: s.cfg.Strict}
	if parseErr != nil {
		run.Error = parseErr.Error()
	} else {
		run.NodeCount = g.NodeCount()
		run.Recoveries = res.Stats.Recoveries
		run.Downgrades = res.Stats.Downgrades
		run.ForcedCloses = res.Stats.ForcedCloses
	}
	id, err := db.RecordRun(sqlDB, run)
	if err != nil {
		return err
	}
	s.logger.Debug("recorded run", "id", id, "path", path)
	return nil
}
