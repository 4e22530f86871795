// Package config loads runtime configuration for the OrionTask CLI.
//
// Sources & precedence (later wins)
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with -c/--config. JSON and YAML are
//     recognised by extension.
//  3. Environment variables prefixed with ORIONTASK_, for example
//     ORIONTASK_SERVER_BASE_URL.
//  4. Command-line flags registered by BindFlags.
//
// Supported flags
//
//	-a, --addr string        base URL of the OrionTask REST API
//	-d, --data-dir string    directory holding the local database and key file
//	-l, --log-level string   debug, info, warn or error
//	-c, --config string      path to a config file
//
// # File schema
//
//	{
//	  "server_base_url": "http://localhost:8080/api/v1",
//	  "data_dir": "~/.oriontask",
//	  "log_level": "info"
//	}
//
// A leading "~" in data_dir is expanded to the user's home directory.
package config
