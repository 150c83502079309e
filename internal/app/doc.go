// Package app provides the composition root for shopsync.
//
// # Overview
//
// This package wires together configuration, preferences, logging, snapshot
// storage, the eShop client and both synchronization controllers. A Session
// owns all of them; the CLI opens one per command and the TUI keeps one open
// until the user quits.
//
// # Data Flow
//
//	┌──────────────┐
//	│   Open()     │ Build a session
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()          Read config.toml / config.yaml
//	       ├─────> prefs.Load()           Theme and order filter
//	       ├─────> slog.NewTextHandler()  stderr, or the log file for the TUI
//	       ├─────> eshop.NewClient()      HTTP client for the backend
//	       ├─────> snapshot.OpenSQLite()  Durable basket document
//	       ├─────> basket.New()           Restores the document, starts the timer
//	       └─────> orders.New()           Filter seeded from prefs
//
//	Run() additionally:
//	┌─────────────────────────────────────────┐
//	│ ui.NewRouter()                          │
//	│  ├─> basket.Controller.Subscribe        │
//	│  ├─> orders.Controller.Subscribe        │
//	│  └─> ui.Run()  (blocks)                 │
//	└─────────────────────────────────────────┘
//
// # Background Refresh
//
// Only the TUI session starts the basket timer (poll_interval, default 10s).
// CLI sessions run exactly the operations the command asks for.
//
// # Error Handling
//
// Open fails on an unreadable or invalid config file, an invalid api_base or
// an unopenable database. Everything after that is a controller failure: it
// is logged, recorded in the controller status and returned to the caller,
// and the session stays usable.
package app
