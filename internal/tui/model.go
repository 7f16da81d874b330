// Package tui renders one quote widget in a terminal with bubbletea.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jsamuelsen/quote-widget/internal/app"
	"github.com/jsamuelsen/quote-widget/internal/domain"
)

// stateMsg carries the widget state after an applied update.
type stateMsg struct {
	state domain.QuoteState
}

// fetchDoneMsg reports that one requested fetch has resolved.
type fetchDoneMsg struct{}

// Model is the bubbletea model over a single QuoteWidget.
type Model struct {
	ctx    context.Context
	widget *app.QuoteWidget

	// changed is signalled by the widget subscription; one pending signal
	// is enough because the listener reads the latest state.
	changed     chan struct{}
	unsubscribe func()

	state   domain.QuoteState
	pending int

	keys keyMap
	help help.Model
}

// New builds a model over w. ctx carries the logger used for fetches.
func New(ctx context.Context, w *app.QuoteWidget) Model {
	changed := make(chan struct{}, 1)

	unsubscribe := w.Subscribe(func(domain.QuoteState) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})

	return Model{
		ctx:         ctx,
		widget:      w,
		changed:     changed,
		unsubscribe: unsubscribe,
		state:       w.State(),
		keys:        defaultKeyMap(),
		help:        help.New(),
	}
}

// Init starts listening for widget updates.
func (m Model) Init() tea.Cmd {
	return m.waitForChange()
}

// Update handles key presses, window size and widget updates.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.Close()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Fetch):
			m.pending++
			return m, m.requestQuote()
		}

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

	case stateMsg:
		m.state = msg.state
		return m, m.waitForChange()

	case fetchDoneMsg:
		if m.pending > 0 {
			m.pending--
		}
	}

	return m, nil
}

// Close drops the subscription and unmounts the widget.
func (m Model) Close() {
	m.unsubscribe()
	m.widget.Close()
}

// State returns the state the model last rendered from.
func (m Model) State() domain.QuoteState {
	return m.state
}

// Pending returns how many requested fetches have not resolved yet.
func (m Model) Pending() int {
	return m.pending
}

// requestQuote dispatches at once; the returned command waits for the fetch
// so the program can count it resolved.
func (m Model) requestQuote() tea.Cmd {
	done := m.widget.RequestQuote(m.ctx)

	return func() tea.Msg {
		<-done
		return fetchDoneMsg{}
	}
}

func (m Model) waitForChange() tea.Cmd {
	changed := m.changed
	w := m.widget

	return func() tea.Msg {
		<-changed
		return stateMsg{state: w.State()}
	}
}
