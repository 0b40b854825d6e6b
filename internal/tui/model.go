// Package tui renders the dashboard in the terminal.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vadiminshakov/seedfarm/internal/domain"
	"github.com/vadiminshakov/seedfarm/internal/viewmodel"
)

type viewSource interface {
	View() viewmodel.View
	Subscribe() chan viewmodel.View
	Unsubscribe(ch chan viewmodel.View)
}

type sessionControl interface {
	Connect(ctx context.Context)
	Disconnect(ctx context.Context)
}

type actionRunner interface {
	Do(ctx context.Context, action domain.Action, input string) (domain.Submission, error)
}

type viewMsg viewmodel.View

type submittedMsg domain.Submission

type actionErrMsg struct{ err error }

type sessionDoneMsg struct{}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7FD1AE"))
	labelStyle  = lipgloss.NewStyle().Bold(true).Width(14)
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#4C6A7A")).Padding(1, 2)
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#E0C36C"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#7A8790"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8BD5FF"))
)

var actionLabels = map[domain.Action]string{
	domain.ActionApprove: "approve SEED",
	domain.ActionStake:   "stake SEED",
	domain.ActionExit:    "withdraw",
}

var actionKeys = map[domain.Action]string{
	domain.ActionApprove: "a",
	domain.ActionStake:   "s",
	domain.ActionExit:    "x",
}

// Model is the bubbletea model of the dashboard screen.
type Model struct {
	ctx     context.Context
	views   viewSource
	session sessionControl
	actions actionRunner
	updates chan viewmodel.View

	view    viewmodel.View
	input   textinput.Model
	staking bool
	busy    bool
	notice  string
	err     error
}

// New builds the screen model. Call Close when the program exits.
func New(ctx context.Context, views viewSource, session sessionControl, actions actionRunner) Model {
	in := textinput.New()
	in.Placeholder = "Value to stake"
	in.CharLimit = 40

	return Model{
		ctx:     ctx,
		views:   views,
		session: session,
		actions: actions,
		updates: views.Subscribe(),
		view:    views.View(),
		input:   in,
	}
}

// Close stops the view subscription.
func (m Model) Close() {
	m.views.Unsubscribe(m.updates)
}

// Run shows the screen until the user quits or ctx is cancelled.
func Run(ctx context.Context, views viewSource, session sessionControl, actions actionRunner) error {
	m := New(ctx, views, session, actions)
	defer m.Close()

	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd {
	return waitForView(m.updates)
}

func waitForView(ch chan viewmodel.View) tea.Cmd {
	return func() tea.Msg {
		v, ok := <-ch
		if !ok {
			return nil
		}
		return viewMsg(v)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case viewMsg:
		m.view = viewmodel.View(msg)
		return m, waitForView(m.updates)

	case sessionDoneMsg:
		m.busy = false
		m.view = m.views.View()
		if !m.view.Connected {
			m.notice = "wallet not connected"
		} else {
			m.notice = ""
		}
		return m, nil

	case submittedMsg:
		m.busy = false
		m.err = nil
		m.notice = fmt.Sprintf("%s submitted: %s", msg.Action, msg.TxHash)
		return m, nil

	case actionErrMsg:
		m.busy = false
		m.err = msg.err
		m.notice = ""
		return m, nil

	case tea.KeyMsg:
		if m.staking {
			return m.updateStakeInput(msg)
		}
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	if m.busy {
		return m, nil
	}

	switch msg.String() {
	case "c":
		if m.view.Connected {
			return m, nil
		}
		m.busy, m.err, m.notice = true, nil, "connecting..."
		return m, m.sessionCmd(m.session.Connect)
	case "d":
		if !m.view.Connected {
			return m, nil
		}
		m.busy = true
		return m, m.sessionCmd(m.session.Disconnect)
	case "a":
		return m.runAction(domain.ActionApprove, "")
	case "x":
		return m.runAction(domain.ActionExit, "")
	case "s":
		if !domain.Offers(m.view.Actions, domain.ActionStake) {
			return m, nil
		}
		m.staking = true
		m.input.SetValue("")
		return m, m.input.Focus()
	}
	return m, nil
}

func (m Model) updateStakeInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.staking = false
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		m.staking = false
		m.input.Blur()
		return m.runAction(domain.ActionStake, m.input.Value())
	case tea.KeyCtrlC:
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) runAction(action domain.Action, input string) (tea.Model, tea.Cmd) {
	if !domain.Offers(m.view.Actions, action) {
		return m, nil
	}
	m.busy, m.err, m.notice = true, nil, fmt.Sprintf("submitting %s...", action)

	ctx, actions := m.ctx, m.actions
	return m, func() tea.Msg {
		sub, err := actions.Do(ctx, action, input)
		if err != nil {
			return actionErrMsg{err: err}
		}
		return submittedMsg(sub)
	}
}

func (m Model) sessionCmd(fn func(context.Context)) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		fn(ctx)
		return sessionDoneMsg{}
	}
}

func (m Model) View() string {
	v := m.view
	var b strings.Builder

	wallet := keyStyle.Render("[c]") + " connect"
	if v.Connected {
		wallet = v.ShortAccount + "  " + keyStyle.Render("[d]") + " disconnect"
	}
	b.WriteString(titleStyle.Render("Seed Farm") + "   1 " + domain.RewardUnit + " = " + v.Price + " " + domain.QuoteUnit + "   " + wallet + "\n\n")

	apr := v.APR
	if apr != "-" {
		apr += " %"
	}
	rows := [][2]string{
		{"APR", apr},
		{"Your Balance", v.Balance + " " + domain.LPUnit},
		{"Your Stake", v.Stake + " " + domain.LPUnit},
		{"Your Reward", v.Reward + " " + domain.RewardUnit},
	}
	for _, r := range rows {
		b.WriteString(labelStyle.Render(r[0]) + r[1] + "\n")
	}
	b.WriteString("\n")

	if m.staking {
		b.WriteString(m.input.View() + "\n" + mutedStyle.Render("enter to stake, esc to cancel") + "\n")
	} else {
		parts := make([]string, 0, len(v.Actions))
		for _, a := range v.Actions {
			parts = append(parts, keyStyle.Render("["+actionKeys[a]+"]")+" "+actionLabels[a])
		}
		b.WriteString(strings.Join(parts, "   ") + "\n")
	}

	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render(m.err.Error()) + "\n")
	} else if m.notice != "" {
		b.WriteString("\n" + noticeStyle.Render(m.notice) + "\n")
	}

	return boxStyle.Render(b.String()) + "\n" + mutedStyle.Render("q quit") + "\n"
}
