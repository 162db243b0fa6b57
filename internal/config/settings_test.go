package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	if s.Product != "maxz" {
		t.Errorf("Product = %q, want maxz", s.Product)
	}
	if s.StepMinutes != 10 {
		t.Errorf("StepMinutes = %d, want 10", s.StepMinutes)
	}
	if s.MaxConcurrentDownloads != 4 {
		t.Errorf("MaxConcurrentDownloads = %d, want 4", s.MaxConcurrentDownloads)
	}
	if filepath.Base(s.CacheDirectory) != "chmi_data" {
		t.Errorf("CacheDirectory = %q, want .../chmi_data", s.CacheDirectory)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Product != DefaultSettings().Product {
		t.Errorf("Product = %q", s.Product)
	}
}

func TestLoad_Formats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name:    "json",
			file:    "config.json",
			content: `{"product": "echotop", "step_minutes": 5, "requests_per_second": 2.5}`,
		},
		{
			name:    "yaml",
			file:    "config.yaml",
			content: "product: echotop\nstep_minutes: 5\nrequests_per_second: 2.5\n",
		},
		{
			name:    "yml",
			file:    "config.yml",
			content: "product: echotop\nstep_minutes: 5\nrequests_per_second: 2.5\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}

			s, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if s.Product != "echotop" {
				t.Errorf("Product = %q, want echotop", s.Product)
			}
			if s.StepMinutes != 5 {
				t.Errorf("StepMinutes = %d, want 5", s.StepMinutes)
			}
			if s.RequestsPerSecond != 2.5 {
				t.Errorf("RequestsPerSecond = %v, want 2.5", s.RequestsPerSecond)
			}
			// Untouched fields keep defaults
			if s.MaxConcurrentDownloads != 4 {
				t.Errorf("MaxConcurrentDownloads = %d, want default 4", s.MaxConcurrentDownloads)
			}
		})
	}
}

func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestSave_RoundTrip(t *testing.T) {
	for _, file := range []string{"sub/config.json", "sub/config.yaml"} {
		t.Run(file, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), file)

			s := DefaultSettings()
			s.Product = "merge1h_png"
			s.MetricsFile = "/tmp/chmirad.prom"
			if err := s.Save(path); err != nil {
				t.Fatalf("Save: %v", err)
			}

			loaded, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if *loaded != *s {
				t.Errorf("loaded = %+v, want %+v", loaded, s)
			}
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CHMIRAD_PRODUCT", "fct_maxz")
	t.Setenv("CHMIRAD_CACHE_DIRECTORY", "/srv/radar")
	t.Setenv("CHMIRAD_STEP_MINUTES", "15")
	t.Setenv("CHMIRAD_MAX_CONCURRENT_DOWNLOADS", "2")
	t.Setenv("CHMIRAD_REQUESTS_PER_SECOND", "0.5")
	t.Setenv("CHMIRAD_LOG_LEVEL", "debug")

	s := DefaultSettings()
	if err := s.LoadFromEnv(); err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}

	if s.Product != "fct_maxz" {
		t.Errorf("Product = %q", s.Product)
	}
	if s.CacheDirectory != "/srv/radar" {
		t.Errorf("CacheDirectory = %q", s.CacheDirectory)
	}
	if s.StepMinutes != 15 {
		t.Errorf("StepMinutes = %d", s.StepMinutes)
	}
	if s.MaxConcurrentDownloads != 2 {
		t.Errorf("MaxConcurrentDownloads = %d", s.MaxConcurrentDownloads)
	}
	if s.RequestsPerSecond != 0.5 {
		t.Errorf("RequestsPerSecond = %v", s.RequestsPerSecond)
	}
	if s.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", s.LogLevel)
	}
}

func TestLoadFromEnv_BadNumber(t *testing.T) {
	t.Setenv("CHMIRAD_STEP_MINUTES", "ten")

	if err := DefaultSettings().LoadFromEnv(); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Settings)
	}{
		{"empty cache", func(s *Settings) { s.CacheDirectory = " " }},
		{"empty product", func(s *Settings) { s.Product = "" }},
		{"zero step", func(s *Settings) { s.StepMinutes = 0 }},
		{"negative step", func(s *Settings) { s.StepMinutes = -5 }},
		{"zero workers", func(s *Settings) { s.MaxConcurrentDownloads = 0 }},
		{"zero timeout", func(s *Settings) { s.RequestTimeoutSeconds = 0 }},
		{"negative rate", func(s *Settings) { s.RequestsPerSecond = -1 }},
		{"zero burst", func(s *Settings) { s.RequestBurst = 0 }},
		{"relative base url", func(s *Settings) { s.BaseURL = "opendata.chmi.cz/radar" }},
		{"ftp base url", func(s *Settings) { s.BaseURL = "ftp://opendata.chmi.cz/" }},
		{"bad log level", func(s *Settings) { s.LogLevel = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.modify(s)
			if err := s.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestToHTTPOptions(t *testing.T) {
	s := DefaultSettings()
	s.RequestTimeoutSeconds = 1.5
	s.RequestsPerSecond = 3
	s.RequestBurst = 2
	s.UserAgent = "test-agent"

	opts := s.ToHTTPOptions()

	if opts.Timeout != 1500*time.Millisecond {
		t.Errorf("Timeout = %v", opts.Timeout)
	}
	if opts.RequestsPerSecond != 3 || opts.Burst != 2 {
		t.Errorf("rate = %v/%d", opts.RequestsPerSecond, opts.Burst)
	}
	if opts.UserAgent != "test-agent" {
		t.Errorf("UserAgent = %q", opts.UserAgent)
	}
}
