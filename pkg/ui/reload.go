package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/treeselect/pkg/model"
	"github.com/vanderheijden86/treeselect/pkg/watcher"
)

// OptionsReloadedMsg carries a freshly loaded option tree after the watched
// source changed. Err is set when watching or reloading failed; the old tree
// stays.
type OptionsReloadedMsg struct {
	Options []model.Option
	Err     error
}

// WatchOptionsCmd waits for the next watcher event and reloads the options.
// The model re-arms it after every OptionsReloadedMsg.
func WatchOptionsCmd(w *watcher.Watcher, load func() ([]model.Option, error)) tea.Cmd {
	if w == nil || load == nil {
		return nil
	}
	return func() tea.Msg {
		ev := <-w.Events()
		if ev.Err != nil {
			return OptionsReloadedMsg{Err: ev.Err}
		}
		opts, err := load()
		return OptionsReloadedMsg{Options: opts, Err: err}
	}
}
