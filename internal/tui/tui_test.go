package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aerogate/internal/access"
	"aerogate/internal/accesslog"
	"aerogate/internal/models"
)

var sampleEntries = []accesslog.Entry{
	{ID: "LG-0003", Name: "Grace Hopper", Timestamp: "2026-10-16 09:32:00", Status: "access granted", Terminal: "LNG-02", Confidence: 91.5},
	{ID: "LG-0002", Name: "UNKNOWN", Timestamp: "2026-10-16 09:31:00", Status: "access denied", Terminal: "LNG-04", Confidence: 12},
	{ID: "LG-0001", Name: "Ada Lovelace", Timestamp: "2026-10-16 09:30:00", Status: "access granted", Terminal: "LNG-04", Confidence: 98.12},
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func ids(entries []accesslog.Entry) []string {
	out := []string{}
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}

func loadedModel(t *testing.T) *WatchModel {
	t.Helper()
	m := NewWatchModel("http://127.0.0.1:8000", func(context.Context) ([]accesslog.Entry, error) {
		return sampleEntries, nil
	}, time.Second)
	msg := m.Init()()
	_, cmd := m.Update(msg)
	require.NotNil(t, cmd, "a load schedules the next tick")
	return m
}

func TestWatchModel_FilterCycle(t *testing.T) {
	m := loadedModel(t)
	assert.Equal(t, []string{"LG-0003", "LG-0002", "LG-0001"}, ids(m.Visible()))

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, accesslog.ShowGranted, m.Filter().Status)
	assert.Equal(t, []string{"LG-0003", "LG-0001"}, ids(m.Visible()))

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, []string{"LG-0002"}, ids(m.Visible()))

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, accesslog.ShowAll, m.Filter().Status)
}

func TestWatchModel_Search(t *testing.T) {
	m := loadedModel(t)

	m.Update(keyRunes("/"))
	for _, r := range "lng-02" {
		m.Update(keyRunes(string(r)))
	}
	assert.Equal(t, "lng-02", m.Filter().Query)
	assert.Equal(t, []string{"LG-0003"}, ids(m.Visible()))

	// "q" is text while searching, not quit.
	_, cmd := m.Update(keyRunes("q"))
	if cmd != nil {
		_, quit := cmd().(tea.QuitMsg)
		assert.False(t, quit)
	}
	assert.Empty(t, m.Visible())

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Empty(t, m.Filter().Query)
	assert.Len(t, m.Visible(), 3)

	m.Update(keyRunes("/"))
	m.Update(keyRunes("ada"))
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "ada", m.Filter().Query)
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, []string{"LG-0001"}, ids(m.Visible()))
}

func TestWatchModel_QuitAndErrors(t *testing.T) {
	m := NewWatchModel("srv", func(context.Context) ([]accesslog.Entry, error) {
		return nil, errors.New("connection refused")
	}, 0)
	_, cmd := m.Update(m.Init()())
	require.NotNil(t, cmd)
	assert.Contains(t, m.View(), "refresh failed: connection refused")
	assert.Contains(t, m.View(), "No access log entries.")

	_, cmd = m.Update(keyRunes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestWatchModel_CtrlCWhileSearching(t *testing.T) {
	m := loadedModel(t)
	m.Update(keyRunes("/"))
	m.Update(keyRunes("ad"))

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, "ad", m.Filter().Query)
}

func TestWatchModel_ManualRefreshKeepsOnePollLoop(t *testing.T) {
	m := loadedModel(t)
	staleTick := tickMsg{gen: m.gen}

	_, cmd := m.Update(keyRunes("r"))
	require.NotNil(t, cmd)
	_, cmd = m.Update(cmd())
	require.NotNil(t, cmd, "the manual refresh schedules its own tick")

	_, cmd = m.Update(staleTick)
	assert.Nil(t, cmd, "the tick scheduled before the manual refresh is dropped")

	_, cmd = m.Update(tickMsg{gen: m.gen})
	require.NotNil(t, cmd)
	assert.IsType(t, logsMsg{}, cmd())
}

func TestWatchModel_KeepsRowsOnFailedRefresh(t *testing.T) {
	m := loadedModel(t)
	m.Update(logsMsg{err: errors.New("timeout")})
	assert.Len(t, m.Visible(), 3)
}

func TestWatchModel_View(t *testing.T) {
	m := loadedModel(t)
	view := m.View()
	assert.Contains(t, view, "Lounge access log")
	assert.Contains(t, view, "total 3")
	assert.Contains(t, view, "granted 2")
	assert.Contains(t, view, "denied 1")
	assert.Contains(t, view, "Ada Lovelace")
	assert.Contains(t, view, "ACCESS DENIED")
	assert.Contains(t, view, "98.12%")
}

func TestScanPanel(t *testing.T) {
	assert.Contains(t, ScanPanel(models.ScanWaiting.Display(), nil), "AWAITING SCAN")
	assert.Contains(t, ScanPanel(models.ScanVerifying.Display(), nil), "VERIFYING IDENTITY")

	res := access.VerifyResult{Status: models.StatusGranted, Name: "Ada Lovelace", Confidence: 97.5}
	panel := ScanPanel(models.ScanStateFor(res.Status).Display(), &res)
	assert.Contains(t, panel, "Welcome to the Premium Lounge")
	assert.Contains(t, panel, "Ada Lovelace")
	assert.Contains(t, panel, "97.50%")

	res = access.VerifyResult{Status: models.StatusDenied, Reason: access.ReasonNoFace}
	panel = ScanPanel(models.ScanStateFor(res.Status).Display(), &res)
	assert.Contains(t, panel, "ACCESS DENIED")
	assert.Contains(t, panel, "No face detected")
}
