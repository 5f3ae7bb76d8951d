// Package config loads quoter's TOML configuration.
//
// # Configuration Discovery
//
// Load resolves the file in this order:
//
//  1. An explicit path (the --config flag), if given
//  2. Otherwise ~/.config/quoter/config.toml
//  3. A missing file yields Default()
//  4. Empty or zero fields keep their defaults
//
// # TOML Format
//
//	remote_url = "https://jsonplaceholder.typicode.com"
//	data_dir = "~/.local/share/quoter"
//	storage = "badger"     # or "sqlite"
//	sync_interval = 30     # seconds
//	auto_sync = false
//	remote_limit = 10
//	log_level = "info"
//
// Every field is optional. Tilde expansion applies to data_dir and to the
// config path itself. The data directory holds the durable store, the log
// file (LogPath) and default exports (ExportDir).
//
// # Error Handling
//
// Load fails on path expansion problems, unreadable files, TOML syntax
// errors and unknown storage drivers. A missing file is not an error.
package config
