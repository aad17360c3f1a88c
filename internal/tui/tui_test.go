package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ssephillip/newsleak/internal/catalog"
	"github.com/ssephillip/newsleak/internal/distributor"
)

func newDistributor(n, quota int) *distributor.Distributor {
	items := make([]catalog.Item, n)
	for i := range items {
		items[i] = catalog.Item{ID: "x", URL: "http://x", Format: "pdf"}
	}
	return distributor.New(items, quota)
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestTickUpdatesCounts(t *testing.T) {
	d := newDistributor(4, 4)
	d.Next()
	d.RecordSuccess()
	d.Next()
	d.RecordFailure()

	m := NewModel("test", d, nil)
	next, cmd := m.Update(TickMsg{})
	if cmd == nil {
		t.Fatal("expected another tick to be scheduled")
	}

	mm := next.(Model)
	if mm.counts.Succeeded != 1 || mm.counts.Failed != 1 || mm.counts.Handed != 2 {
		t.Errorf("unexpected counts %+v", mm.counts)
	}
	if mm.complete {
		t.Error("should not be complete")
	}

	view := mm.View()
	for _, want := range []string{"test", "1 downloaded", "1 failed", "2 / 4", "2 of 4 documents handed out", "q: stop"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestDoneQuits(t *testing.T) {
	d := newDistributor(1, 1)
	d.Next()
	d.RecordSuccess()

	m := NewModel("test", d, nil)
	next, cmd := m.Update(DoneMsg{})
	if !isQuit(cmd) {
		t.Fatal("expected quit after DoneMsg")
	}
	mm := next.(Model)
	if !mm.finished || !mm.complete {
		t.Error("expected finished and complete")
	}
	if !strings.Contains(mm.View(), "Complete") {
		t.Errorf("expected completion in view:\n%s", mm.View())
	}
}

func TestDoneWithError(t *testing.T) {
	m := NewModel("test", newDistributor(0, 0), nil)
	next, _ := m.Update(DoneMsg{Err: errors.New("write final report: disk full")})
	if !strings.Contains(next.(Model).View(), "disk full") {
		t.Error("expected error in view")
	}
}

func TestQuitCancelsRun(t *testing.T) {
	tests := []struct {
		name string
		key  tea.KeyMsg
	}{
		{"ctrl+c", tea.KeyMsg{Type: tea.KeyCtrlC}},
		{"q", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cancelled := false
			m := NewModel("test", newDistributor(3, 3), func() { cancelled = true })

			next, cmd := m.Update(tt.key)
			if !isQuit(cmd) {
				t.Fatal("expected quit")
			}
			if !cancelled {
				t.Error("expected cancel to be called")
			}
			if !next.(Model).interrupted {
				t.Error("expected interrupted state")
			}
		})
	}
}

func TestWindowSizeClampsBar(t *testing.T) {
	m := NewModel("test", newDistributor(0, 0), nil)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 300})
	if w := next.(Model).progress.Width; w != 80 {
		t.Errorf("expected width 80, got %d", w)
	}
	next, _ = m.Update(tea.WindowSizeMsg{Width: 10})
	if w := next.(Model).progress.Width; w != 20 {
		t.Errorf("expected width 20, got %d", w)
	}
}
