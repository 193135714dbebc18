// Package config loads Tally's configuration from
// ~/.config/tally/config.toml.
//
// A missing file is not an error; every field has a default suitable for a
// local server. Example:
//
//	server = "127.0.0.1:8475"
//	list = "inbox"
//	mode = "push"        # or "poll"
//	poll_seconds = 2
//
// Command-line flags in cmd/tally override individual fields after Load.
// Mode validation happens in the sync package, not here.
package config
