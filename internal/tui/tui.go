package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/tatianab/lone-garrison/internal/engine"
	"github.com/tatianab/lone-garrison/internal/models"
)

type sessionState int

const (
	stateLoading sessionState = iota
	statePlaying
	stateError
)

type model struct {
	state     sessionState
	engine    *engine.Engine
	store     *models.Store
	game      *models.GameState
	log       []models.LogEntry
	dilemma   *models.Dilemma
	intel     string
	textInput textinput.Model
	viewport  viewport.Model
	err       error
	gameLog   string
	width     int
	height    int
}

var (
	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Background(lipgloss.Color("#5F3F3F")).
			Bold(true).
			PaddingLeft(1)

	gameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	stateStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			PaddingLeft(2).
			Foreground(lipgloss.Color("#AAAAAA"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true).
			Underline(true)

	alertStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555")).
			Bold(true)

	intelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87AF87")).
			Italic(true)
)

func NewModel(eng *engine.Engine, store *models.Store) model {
	ti := textinput.New()
	ti.Placeholder = "Your orders, commander..."
	ti.Focus()
	ti.CharLimit = 156
	ti.Width = 40

	return model{
		state:     stateLoading,
		engine:    eng,
		store:     store,
		game:      eng.NewGame(),
		textInput: ti,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.processTurn(engine.StartCommand))
}

type turnMsg struct {
	result *models.TurnResult
	err    error
}

type statusMsg string

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyEnter:
			if m.state != statePlaying {
				return m, nil
			}
			input := strings.TrimSpace(m.textInput.Value())
			if input == "" {
				return m, nil
			}
			m.textInput.Reset()

			if strings.HasPrefix(input, "/") {
				return m.handleSlash(input)
			}

			// A bare option number answers the pending dilemma.
			if m.dilemma != nil {
				if idx, err := strconv.Atoi(input); err == nil && idx >= 1 && idx <= len(m.dilemma.Options) {
					cmd := m.dilemma.Options[idx-1].ActionCmd
					m.dilemma = nil
					return m.submit(input, cmd)
				}
			}
			return m.submit(input, input)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = int(float64(msg.Width) * 0.72)
		m.viewport.Height = msg.Height - 6
		m.viewport.SetContent(m.gameLog)

	case turnMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = stateError
			return m, nil
		}
		res := msg.result
		res.Patch.Apply(m.game)
		m.dilemma = res.Dilemma
		if res.EnemyIntel != "" {
			m.intel = res.EnemyIntel
		}
		m.appendSystem(res.Narrative)
		if m.dilemma != nil {
			m.appendSystem(renderDilemma(m.dilemma))
		}
		m.state = statePlaying
		m.viewport.SetContent(m.gameLog)
		m.viewport.GotoBottom()
		return m, nil

	case statusMsg:
		m.appendSystem(string(msg))
		m.viewport.SetContent(m.gameLog)
		m.viewport.GotoBottom()
		return m, nil
	}

	if m.state == statePlaying {
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleSlash runs the out-of-game commands: save, load, slots, quit.
func (m model) handleSlash(input string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(input)
	switch fields[0] {
	case "/quit":
		return m, tea.Quit
	case "/save":
		slot := 1
		if len(fields) > 1 {
			slot, _ = strconv.Atoi(fields[1])
		}
		if err := m.store.Save(slot, m.game, m.log); err != nil {
			return m, func() tea.Msg { return statusMsg(fmt.Sprintf("Save failed: %v", err)) }
		}
		return m, func() tea.Msg { return statusMsg(fmt.Sprintf("Saved to slot %d.", slot)) }
	case "/load":
		slot := 1
		if len(fields) > 1 {
			slot, _ = strconv.Atoi(fields[1])
		}
		data, err := m.store.Load(slot)
		if err != nil {
			return m, func() tea.Msg { return statusMsg(fmt.Sprintf("Load failed: %v", err)) }
		}
		m.game = data.State
		m.log = data.Log
		m.dilemma = nil
		m.gameLog = ""
		for _, entry := range m.log {
			if entry.Sender == "user" {
				m.appendUser(entry.Text)
			} else {
				m.appendSystem(entry.Text)
			}
		}
		m.viewport.SetContent(m.gameLog)
		m.viewport.GotoBottom()
		return m, func() tea.Msg { return statusMsg(fmt.Sprintf("Loaded slot %d.", slot)) }
	case "/slots":
		slots, err := m.store.ListSlots()
		if err != nil {
			return m, func() tea.Msg { return statusMsg(fmt.Sprintf("List failed: %v", err)) }
		}
		if len(slots) == 0 {
			return m, func() tea.Msg { return statusMsg("No saves yet.") }
		}
		var b strings.Builder
		for _, meta := range slots {
			fmt.Fprintf(&b, "Slot %d: day %d, %d men, at the %s\n", meta.Slot, meta.Day, meta.Soldiers, meta.Location)
		}
		out := strings.TrimRight(b.String(), "\n")
		return m, func() tea.Msg { return statusMsg(out) }
	default:
		return m, func() tea.Msg { return statusMsg("Commands: /save [n], /load [n], /slots, /quit") }
	}
}

func (m model) submit(display, command string) (tea.Model, tea.Cmd) {
	m.appendUser(display)
	m.state = stateLoading
	m.viewport.SetContent(m.gameLog)
	m.viewport.GotoBottom()
	return m, m.processTurn(command)
}

func (m *model) appendUser(text string) {
	m.log = append(m.log, models.LogEntry{ID: uuid.NewString(), Sender: "user", Text: text})
	logWidth := m.viewport.Width
	if logWidth == 0 {
		logWidth = 72
	}
	m.gameLog += "\n\n" + userStyle.Width(logWidth).Render("> "+text) + "\n\n"
}

func (m *model) appendSystem(text string) {
	m.log = append(m.log, models.LogEntry{ID: uuid.NewString(), Sender: "system", Text: text})
	logWidth := m.viewport.Width
	if logWidth == 0 {
		logWidth = 72
	}
	m.gameLog += gameStyle.Width(logWidth).Render(text) + "\n\n"
}

func renderDilemma(d *models.Dilemma) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n", alertStyle.Render("⚑ "+d.Title), d.Description)
	for i, opt := range d.Options {
		fmt.Fprintf(&b, "  %d. %s", i+1, opt.Label)
		if opt.RiskText != "" {
			fmt.Fprintf(&b, " (%s)", opt.RiskText)
		}
		b.WriteString("\n")
	}
	b.WriteString("Answer with the option number.")
	return b.String()
}

func (m model) View() string {
	var s string

	switch m.state {
	case stateLoading:
		logView := m.viewport.View()
		s = lipgloss.JoinHorizontal(lipgloss.Top, logView, m.renderState()) +
			"\n  The adjutant carries out your orders..."

	case statePlaying:
		mainView := lipgloss.JoinHorizontal(lipgloss.Top,
			m.viewport.View(),
			m.renderState(),
		)
		help := helpStyle.Render("Commands: /save [n], /load [n], /slots, /quit, or just give orders.")
		s = lipgloss.JoinVertical(lipgloss.Left,
			mainView,
			"\n"+m.textInput.View(),
			"\n"+help,
		)

	case stateError:
		s = fmt.Sprintf("\n  Error: %v\n\nPress Esc to quit.", m.err)
	}

	return "\n" + s + "\n"
}

func (m model) renderState() string {
	g := m.game
	if g == nil {
		return ""
	}

	header := titleStyle.Render("SIHANG WAREHOUSE") + "\n" +
		fmt.Sprintf("Day %d  %s\n", g.Day, g.CurrentTime) +
		fmt.Sprintf("Post: %s\n\n", g.Location)

	garrison := titleStyle.Render("GARRISON") + "\n" +
		fmt.Sprintf("Effectives: %d\nWounded: %d\nMorale: %d\nPosition: %d%%\n", g.Soldiers, g.Wounded, g.Morale, g.Health)
	for _, sq := range g.SupportSquads {
		mark := "✔"
		if sq.Status != models.SquadActive {
			mark = "✘"
		}
		garrison += fmt.Sprintf("%s %s\n", mark, sq.Name)
	}
	garrison += "\n"

	stocks := titleStyle.Render("STOCKS") + "\n" +
		fmt.Sprintf("Rifle rounds: %d\nMG rounds: %d\nGrenades: %d\nMaterial: %d\nMedkits: %d\n\n",
			g.Ammo, g.SupportAmmo, g.Grenades, g.Material, g.Medkits)

	threat := titleStyle.Render("THREAT") + "\n" + renderMeter(g.SiegeMeter) + "\n"
	if g.HasFlagRaised {
		threat += alertStyle.Render("The flag is flying") + "\n"
	}
	if g.ActiveCard != nil {
		threat += "\n" + titleStyle.Render("OPPORTUNITY") + "\n" +
			g.ActiveCard.Title + "\n" + g.ActiveCard.EffectText + "\n"
	}

	content := header + garrison + stocks + threat
	if m.intel != "" {
		content += "\n" + titleStyle.Render("INTEL") + "\n" + intelStyle.Render(m.intel) + "\n"
	}

	stateWidth := int(float64(m.width) * 0.25)
	return stateStyle.Width(stateWidth).Height(m.viewport.Height).Render(content)
}

func renderMeter(v int) string {
	filled := v / 10
	return alertStyle.Render(strings.Repeat("█", filled)) + strings.Repeat("░", 10-filled) + fmt.Sprintf(" %d%%", v)
}

func (m model) processTurn(command string) tea.Cmd {
	game := m.game
	history := recentHistory(m.log)
	return func() tea.Msg {
		result, err := m.engine.ProcessTurn(context.Background(), game, command, history)
		return turnMsg{result, err}
	}
}

// recentHistory hands the last few log lines to the narrator for
// continuity.
func recentHistory(log []models.LogEntry) string {
	start := len(log) - 6
	if start < 0 {
		start = 0
	}
	var parts []string
	for _, entry := range log[start:] {
		parts = append(parts, entry.Sender+": "+entry.Text)
	}
	return strings.Join(parts, "\n")
}

func Run(eng *engine.Engine, store *models.Store) error {
	p := tea.NewProgram(NewModel(eng, store), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
