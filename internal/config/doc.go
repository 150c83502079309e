// Package config loads the shopsync configuration file.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/shopsync/config.toml (default)
//  3. If the config file doesn't exist, fall back to defaults
//  4. If the file exists but fields are missing or empty, use defaults
//
// A path ending in .yaml or .yml is parsed as YAML; every other path is
// parsed as TOML. Both formats use the same keys.
//
// # Default Values
//
//   - api_base: http://127.0.0.1:5000
//   - poll_interval: 10s
//   - request_timeout: 10s
//   - data_dir: ~/.local/share/shopsync
//   - buyer: "" (orders are listed for no user)
//   - page_size: 100
//
// The basket snapshot database lives at <data_dir>/shopsync.db and the TUI
// log at <data_dir>/shopsync.log.
//
// # TOML Format
//
//	api_base = "http://shop.internal:5000"
//	poll_interval = "30s"
//	buyer = "alice"
//
// Durations use Go syntax ("500ms", "10s", "1m"). Tilde expansion is
// performed on data_dir.
//
// # Error Handling
//
// Load returns errors for:
//   - Path expansion failures (e.g., cannot determine home directory)
//   - File read errors (except os.ErrNotExist, which triggers defaults)
//   - Parse errors, unparsable durations and non-positive values
//
// Missing config files are NOT an error, so shopsync runs against a local
// backend without any configuration.
package config
