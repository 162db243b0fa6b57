package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/handiism/chmirad/internal/config"
	"github.com/handiism/chmirad/internal/download"
)

var testProducts = []string{"echotop", "maxz", "merge1h"}

func press(m Model, key string) Model {
	var msg tea.KeyMsg
	switch key {
	case "left":
		msg = tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestNewModel_SelectsConfiguredProduct(t *testing.T) {
	settings := config.DefaultSettings()
	settings.Product = "merge1h"

	m := NewModel(settings, testProducts)
	if got := m.products[m.selected]; got != "merge1h" {
		t.Errorf("selected = %q, want merge1h", got)
	}
}

func TestUpdate_ProductCycling(t *testing.T) {
	m := NewModel(config.DefaultSettings(), testProducts) // maxz

	m = press(m, "right")
	if got := m.products[m.selected]; got != "merge1h" {
		t.Errorf("after right = %q, want merge1h", got)
	}
	m = press(m, "right")
	if got := m.products[m.selected]; got != "echotop" {
		t.Errorf("right should wrap, got %q", got)
	}
	m = press(m, "left")
	if got := m.products[m.selected]; got != "merge1h" {
		t.Errorf("left should wrap back, got %q", got)
	}
}

func TestUpdate_VerboseToggle(t *testing.T) {
	m := NewModel(config.DefaultSettings(), testProducts)
	m = press(m, "v")
	if !m.verbose {
		t.Error("v should enable verbose output")
	}
	if !strings.Contains(m.View(), "[x] Verbose") {
		t.Error("view should show verbose checked")
	}
}

func TestReadRequest(t *testing.T) {
	tests := []struct {
		name    string
		hours   string
		step    string
		wantErr bool
	}{
		{"defaults", "1", "10", false},
		{"fractional hours", "0.5", "5", false},
		{"zero hours", "0", "10", true},
		{"text hours", "abc", "10", true},
		{"zero step", "1", "0", true},
		{"negative step", "1", "-5", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewModel(config.DefaultSettings(), testProducts)
			m.inputs[fieldHours].SetValue(tt.hours)
			m.inputs[fieldStep].SetValue(tt.step)

			req, err := m.readRequest()
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && req.Product != "maxz" {
				t.Errorf("Product = %q", req.Product)
			}
		})
	}
}

func TestUpdate_InvalidInputStaysOnForm(t *testing.T) {
	m := NewModel(config.DefaultSettings(), testProducts)
	m.inputs[fieldStep].SetValue("0")

	m = press(m, "enter")
	if m.state != StateInput {
		t.Errorf("state = %v, want StateInput", m.state)
	}
	if m.err == nil {
		t.Error("expected a validation error")
	}
}

func TestUpdate_DownloadDone(t *testing.T) {
	m := NewModel(config.DefaultSettings(), testProducts)
	m.state = StateDownloading

	next, _ := m.Update(DownloadDoneMsg{Outcomes: []download.Outcome{
		{Kind: download.Fetched, Size: 1024},
		{Kind: download.Skipped},
		{Kind: download.Failed, Err: &download.StatusError{Code: 404}},
	}})
	m = next.(Model)

	if m.state != StateComplete {
		t.Fatalf("state = %v, want StateComplete", m.state)
	}
	if m.stats.Fetched != 1 || m.stats.Skipped != 1 || m.stats.Failed != 1 {
		t.Errorf("stats = %+v", m.stats)
	}
	if !strings.Contains(m.View(), "Failed: 1") {
		t.Error("summary should list failures")
	}
}

func TestUpdate_IgnoresMessagesFromAbandonedRun(t *testing.T) {
	m := NewModel(config.DefaultSettings(), testProducts)

	m = press(m, "enter")
	if m.state != StateInitializing {
		t.Fatalf("state = %v, want StateInitializing", m.state)
	}
	abandoned := m.run

	m = press(m, "esc")
	if m.state != StateError {
		t.Fatalf("state after esc = %v, want StateError", m.state)
	}
	m = press(m, "r")
	if m.state != StateInput {
		t.Fatalf("state after r = %v, want StateInput", m.state)
	}

	late := []tea.Msg{
		InitDoneMsg{Run: abandoned},
		DownloadDoneMsg{Run: abandoned, Outcomes: []download.Outcome{{Kind: download.Fetched, Size: 10}}},
	}
	for _, msg := range late {
		next, _ := m.Update(msg)
		m = next.(Model)
		if m.state != StateInput {
			t.Errorf("%T moved the form to state %v", msg, m.state)
		}
	}
	if m.stats.Fetched != 0 {
		t.Errorf("stale stats applied: %+v", m.stats)
	}
}

func TestUpdate_DownloadDoneAfterCancelKeepsError(t *testing.T) {
	m := NewModel(config.DefaultSettings(), testProducts)
	m = press(m, "enter")
	m.state = StateDownloading
	m = press(m, "esc")

	next, _ := m.Update(DownloadDoneMsg{Run: m.run, Outcomes: []download.Outcome{
		{Kind: download.Failed, Err: context.Canceled},
	}})
	m = next.(Model)

	if m.state != StateError {
		t.Errorf("state = %v, want StateError", m.state)
	}
	if m.stats.Failed != 1 {
		t.Errorf("stats = %+v", m.stats)
	}
}

func TestEventLog_KeepsMostRecent(t *testing.T) {
	l := newEventLog(3)
	for _, msg := range []string{"a", "b", "c", "d", "e"} {
		l.Add(download.ProgressEvent{Message: msg})
	}

	got := l.Snapshot()
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].Message != "c" || got[2].Message != "e" {
		t.Errorf("snapshot = %+v", got)
	}
}
