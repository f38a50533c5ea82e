package ui

import (
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sshdeck/sshdeck/internal/store"
	"github.com/sshdeck/sshdeck/internal/syncer"
)

func TestRenderProfileTable(t *testing.T) {
	out := RenderProfileTable([]store.Profile{
		{Title: "web", Username: "deploy", Host: "10.0.0.1", Port: 22},
		{Title: "db", Username: "root", Host: "10.0.0.2"},
	})
	assert.Contains(t, out, "web")
	assert.Contains(t, out, "deploy@10.0.0.1")
	// Missing port renders the default.
	assert.Contains(t, out, "22")
	assert.NotContains(t, out, "password")
}

func TestRenderProfileTableEmpty(t *testing.T) {
	out := RenderProfileTable(nil)
	assert.Contains(t, out, "No profiles")
}

func TestRenderCommandTable(t *testing.T) {
	out := RenderCommandTable([]store.Command{
		{LineNumber: 1, Title: "deploy", Command: "make deploy", Profile: "web", URL: "https://ci.example.com"},
		{LineNumber: 2, Title: "logs", Command: "tail -f app.log", Profile: "web"},
	})
	assert.Contains(t, out, "deploy")
	assert.Contains(t, out, "make deploy")
	assert.Contains(t, out, "ci.example.com")
}

func TestRenderDeviceTable(t *testing.T) {
	now := time.Now()
	out := RenderDeviceTable([]syncer.Device{
		{DeviceID: "aaa", DeviceName: "laptop", LastSeen: now, Online: true},
		{DeviceID: "bbb", DeviceName: "desktop", LastSeen: now.Add(-2 * time.Hour), Online: false, PendingPush: true},
	}, "aaa")

	assert.Contains(t, out, "laptop (this device)")
	assert.Contains(t, out, "desktop")
	assert.Contains(t, out, "push pending")
	assert.Contains(t, out, "just now")
	assert.Contains(t, out, "2h ago")
}

func TestSpinnerLifecycle(t *testing.T) {
	var mu sync.Mutex
	var captured strings.Builder

	s := NewSpinner("Running on web")
	s.SetOutput(func(out string) {
		mu.Lock()
		defer mu.Unlock()
		captured.WriteString(out)
	})

	s.Start()
	assert.Equal(t, SpinnerInProgress, s.State())
	time.Sleep(180 * time.Millisecond)
	s.Success()

	assert.Equal(t, SpinnerSuccess, s.State())
	assert.Greater(t, s.Elapsed(), time.Duration(0))

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, captured.String(), "Running on web")
}

func TestSpinnerDoubleStartAndStop(t *testing.T) {
	s := NewSpinner("x")
	s.SetOutput(func(string) {})
	s.Start()
	s.Start()
	s.Stop()
	s.Stop()
}

func TestCommandPickerSelectsOnEnter(t *testing.T) {
	commands := []store.Command{
		{LineNumber: 1, Title: "a", Command: "true", Profile: "web"},
		{LineNumber: 2, Title: "b", Command: "false", Profile: "web"},
	}
	m := NewCommandPickerModel(commands)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	picked := updated.(CommandPickerModel).Selected()
	require.NotNil(t, picked)
	assert.Equal(t, "a", picked.Title)
}

func TestCommandPickerCancels(t *testing.T) {
	m := NewCommandPickerModel([]store.Command{
		{LineNumber: 1, Title: "a", Command: "true", Profile: "web"},
	})

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, updated.(CommandPickerModel).Selected())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	long := truncate(strings.Repeat("x", 50), 10)
	assert.Contains(t, long, "…")
}
