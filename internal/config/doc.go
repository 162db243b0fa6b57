// Package config provides configuration management for chmirad.
//
// This package handles:
//   - Loading and saving settings from JSON or YAML files
//   - Default configuration values
//   - CHMIRAD_* environment overrides
//   - Conversion to transport options for the HTTP client
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// Caches into ~/chmi_data
//	// Product maxz, one file every 10 minutes
//	// Four concurrent downloads, no client-side rate limit
//
// # Loading from File
//
//	settings, err := config.Load("/etc/chmirad.yaml")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//	if err := settings.LoadFromEnv(); err != nil {
//	    // A CHMIRAD_* variable failed to parse
//	}
//	if err := settings.Validate(); err != nil {
//	    // Unusable value
//	}
//
// A YAML file looks like:
//
//	cache_directory: /var/lib/chmirad
//	product: pseudocappi2km
//	step_minutes: 5
//	max_concurrent_downloads: 8
//	requests_per_second: 4
//
// # Saving Settings
//
//	settings.Product = "echotop"
//	err := settings.Save("/path/to/config.json")
package config
