package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/five82/shopsync/internal/basket"
	"github.com/five82/shopsync/internal/config"
	"github.com/five82/shopsync/internal/eshop"
	"github.com/five82/shopsync/internal/orders"
	"github.com/five82/shopsync/internal/prefs"
	"github.com/five82/shopsync/internal/snapshot"
)

// Options configure a shopsync session.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/shopsync/prefs.toml
	Verbose    bool

	// LogWriter receives log output when LogToFile is false. Nil discards.
	LogWriter io.Writer
	// LogToFile sends log output to the config's log file instead.
	LogToFile bool

	// Background starts the basket refresh timer at the configured
	// poll_interval. CLI commands leave it off.
	Background bool
	Navigator  basket.Navigator

	// Storage overrides the SQLite database under data_dir.
	Storage snapshot.Storage
}

// Session owns the controllers and everything they depend on.
type Session struct {
	Config config.Config
	Prefs  prefs.Prefs
	Logger *slog.Logger
	Basket *basket.Controller
	Orders *orders.Controller

	closers []io.Closer
}

// Open loads configuration and preferences and builds both controllers.
// Neither controller touches the network until asked to.
func Open(ctx context.Context, opts Options) (*Session, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		return nil, fmt.Errorf("load prefs: %w", err)
	}

	s := &Session{Config: cfg, Prefs: userPrefs}

	logger, err := s.openLogger(opts)
	if err != nil {
		return nil, err
	}
	s.Logger = logger

	client, err := eshop.NewClient(cfg.APIBase, cfg.RequestTimeout)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("init eshop client: %w", err)
	}

	storage := opts.Storage
	if storage == nil {
		db, err := snapshot.OpenSQLite(cfg.DatabasePath())
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("open snapshot storage: %w", err)
		}
		s.closers = append(s.closers, db)
		storage = db
	}

	interval := cfg.PollInterval
	if !opts.Background {
		interval = -1
	}
	s.Basket = basket.New(ctx, basket.Options{
		Client:    client,
		Storage:   storage,
		Navigator: opts.Navigator,
		Logger:    logger.With("component", "basket"),
		Interval:  interval,
		PageSize:  cfg.PageSize,
	})
	s.Orders = orders.New(orders.Options{
		Client: client,
		Buyer:  cfg.Buyer,
		Filter: orders.Filter{
			Status: userPrefs.OrderStatus,
			Period: orders.Period(userPrefs.OrderPeriod),
		},
		PageSize: cfg.PageSize,
		Logger:   logger.With("component", "orders"),
	})

	logger.Debug("session opened",
		"api_base", cfg.APIBase,
		"poll_interval", cfg.PollInterval,
		"database", cfg.DatabasePath(),
		"background", opts.Background,
	)
	return s, nil
}

func (s *Session) openLogger(opts Options) (*slog.Logger, error) {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}

	w := opts.LogWriter
	if opts.LogToFile {
		path := s.Config.LogPath()
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		s.closers = append(s.closers, f)
		w = f
	}
	if w == nil {
		w = io.Discard
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

// Close disposes both controllers and releases storage and the log file.
func (s *Session) Close() error {
	if s == nil {
		return nil
	}
	if s.Basket != nil {
		s.Basket.Dispose()
	}
	if s.Orders != nil {
		s.Orders.Dispose()
	}
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
