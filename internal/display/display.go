// Package display provides the terminal UI using Bubble Tea.
//
// The [UI] type manages a persistent kitchen status bar (pot, board,
// serving slots and score) and an input prompt at the bottom of the
// terminal. All application output is
// printed above the rendered area via Program.Println / Printf,
// ensuring concurrent writes never garble the display.
package display

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/ottokitchen/internal/engine"
)

// ── Styles ───────────────────────────────────────────────────────

var (
	barBg = lipgloss.NewStyle().
		Background(lipgloss.Color("#27272a")).
		Foreground(lipgloss.Color("#a1a1aa"))

	cookingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fde68a"))

	fullStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fca5a5"))

	idleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a")).
			Italic(true)

	dishStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bbf7d0"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a1a1aa"))

	sepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#52525b"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	// ── Output styles (soft palette) ──

	// BannerStyle: muted slate, startup banner.
	BannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	// Chat: sky blue, kitchen announcements.
	chatStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bae6fd"))

	// Info: light zinc, listings and status.
	primaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4d4d8"))

	// Hint: dimmed zinc.
	secondaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a"))

	// Urgent: soft coral, errors and full-counter alerts.
	urgentOutputStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#fca5a5"))

	userInputEchoStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#a1a1aa"))
)

// ── UI ───────────────────────────────────────────────────────────

// UI manages the terminal through Bubble Tea.
//
// Call [NewUI] then [UI.Run] (blocking).  Other goroutines may
// safely call [UI.Println], [UI.Printf], and read from
// [UI.InputChan] at any time after [UI.WaitReady] returns.
type UI struct {
	program atomic.Pointer[tea.Program]
	inputCh chan string
	readyCh chan struct{}
	quitCh  chan struct{}
	source  Source
	opts    []tea.ProgramOption
	done    atomic.Bool
}

// Source provides the kitchen state to render.
type Source interface {
	Snapshot() *engine.Snapshot
}

// NewUI creates the display. Call Run() to start. Program options are
// passed through to Bubble Tea.
func NewUI(source Source, opts ...tea.ProgramOption) *UI {
	return &UI{
		source:  source,
		opts:    opts,
		inputCh: make(chan string, 16),
		readyCh: make(chan struct{}),
		quitCh:  make(chan struct{}),
	}
}

// Println prints a line above the prompt. Thread-safe.
// Each argument is converted via fmt.Sprint and printed on its own
// line(s).  If the program hasn't started yet, falls back to
// fmt.Println.
func (u *UI) Println(a ...interface{}) {
	if p := u.program.Load(); p != nil && !u.done.Load() {
		p.Println(a...)
	} else {
		fmt.Println(a...)
	}
}

// Printf prints formatted text above the prompt. Thread-safe.
// The output is printed on its own line (a trailing newline in the
// format string will produce an extra blank line).
func (u *UI) Printf(format string, a ...interface{}) {
	if p := u.program.Load(); p != nil && !u.done.Load() {
		p.Printf(format, a...)
	} else {
		fmt.Printf(format, a...)
	}
}

// InputChan returns completed user-input lines.
func (u *UI) InputChan() <-chan string { return u.inputCh }

// ── Styled print helpers ─────────────────────────────────────────
// These give output visual hierarchy with lipgloss colors.

// PrintChat prints a conversational assistant line.
func (u *UI) PrintChat(text string) {
	u.Println(chatStyle.Render("  " + text))
}

// PrintInfo prints plain listing text such as the recipe table.
func (u *UI) PrintInfo(text string) {
	u.Println(primaryStyle.Render("  " + text))
}

// PrintHint prints a secondary/dimmed line.
func (u *UI) PrintHint(text string) {
	u.Println(secondaryStyle.Render("  " + text))
}

// PrintUrgent prints an urgent/error line (red, bold).
func (u *UI) PrintUrgent(text string) {
	u.Println(urgentOutputStyle.Render("  " + text))
}

// PrintVoice prints a voice-recognised input line.
func (u *UI) PrintVoice(text string) {
	u.Println(secondaryStyle.Render("[voice] ") + primaryStyle.Render(text))
}

// PrintUserInput echoes the user's typed command into the scrollback.
func (u *UI) PrintUserInput(text string) {
	u.Println(promptStyle.Render("kitchen") + secondaryStyle.Render("> ") + userInputEchoStyle.Render(text))
}

// WaitReady blocks until the Bubble Tea event loop is running.
func (u *UI) WaitReady() { <-u.readyCh }

// Quit tells Bubble Tea to exit.
func (u *UI) Quit() {
	if p := u.program.Load(); p != nil {
		p.Quit()
	}
}

// QuitChan is closed when Run returns.
func (u *UI) QuitChan() <-chan struct{} { return u.quitCh }

// Run starts the Bubble Tea event loop.  Blocks until quit.
func (u *UI) Run() error {
	ti := textinput.New()
	// Use a plain-text prompt so the textinput width math stays correct.
	// Lipgloss-styled prompts add invisible ANSI bytes that break the
	// internal offset/scroll calculations for long input.
	ti.Prompt = "kitchen> "
	ti.PromptStyle = promptStyle
	ti.TextStyle = userInputEchoStyle
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8"))
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60 // updated on first WindowSizeMsg

	m := model{
		source:  u.source,
		input:   ti,
		inputCh: u.inputCh,
		readyCh: u.readyCh,
		echoFn: func(v string) {
			u.PrintUserInput(v)
		},
	}

	p := tea.NewProgram(m, u.opts...)
	u.program.Store(p)
	_, err := p.Run()
	u.done.Store(true)
	close(u.quitCh)
	return err
}

// ── Bubble Tea model ─────────────────────────────────────────────

const promptLen = len("kitchen> ")

// refreshInterval is how often the status bar re-reads the kitchen.
const refreshInterval = 100 * time.Millisecond

type model struct {
	source  Source
	input   textinput.Model
	inputCh chan<- string
	readyCh chan struct{}
	echoFn  func(string) // prints user input into scrollback
	snap    *engine.Snapshot
	width   int
}

// Messages.
type tickMsg time.Time

func (m model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		tickCmd(),
		signalReady(m.readyCh),
	)
}

func signalReady(ch chan struct{}) tea.Cmd {
	return func() tea.Msg {
		close(ch)
		return nil
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEnter:
			v := m.input.Value()
			m.input.Reset()
			if strings.TrimSpace(v) != "" {
				m.inputCh <- v
				// Print the echo from a Cmd; it runs
				// outside Update so it won't deadlock on msgs.
				echoFn := m.echoFn
				return m, func() tea.Msg {
					echoFn(v)
					return nil
				}
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		if msg.Width > promptLen {
			m.input.Width = msg.Width - promptLen
		}
		return m, nil

	case tickMsg:
		if m.source != nil {
			m.snap = m.source.Snapshot()
		}
		return m, tea.Batch(tickCmd(), tea.SetWindowTitle(titleStr(m.snap)))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) View() string {
	var b strings.Builder

	if m.snap != nil {
		b.WriteString(renderBar(m.snap, m.width))
		b.WriteByte('\n')
	}

	// Blank line before prompt for visual separation.
	b.WriteByte('\n')
	b.WriteString(m.input.View())
	return b.String()
}

// titleStr is the terminal window title.
func titleStr(s *engine.Snapshot) string {
	if s == nil {
		return "OttoKitchen"
	}
	if s.Recipe != "" {
		return fmt.Sprintf("OttoKitchen — %s %d%% | %d pts", s.Recipe, int(s.Progress*100), s.Score)
	}
	return fmt.Sprintf("OttoKitchen — %d pts", s.Score)
}

// renderBar draws the status bar: pot, board, serving slots, score.
func renderBar(s *engine.Snapshot, width int) string {
	parts := []string{potPart(s)}
	if b := boardPart(s); b != "" {
		parts = append(parts, b)
	}
	parts = append(parts, slotsPart(s), scorePart(s))

	content := " " + strings.Join(parts, sepStyle.Render("  │  ")) + " "

	if width <= 0 {
		width = 80
	}
	return barBg.Width(width).Render(content)
}

func potPart(s *engine.Snapshot) string {
	if s.Recipe != "" {
		return labelStyle.Render("pot: ") +
			cookingStyle.Render(fmt.Sprintf("%s %s %s", s.Recipe, progressBar(s.Progress, 10), fmtDuration(s.Remaining)))
	}
	if len(s.Ingredients) == 0 {
		return labelStyle.Render("pot: ") + idleStyle.Render("empty")
	}
	style := labelStyle
	if !s.Reachable {
		style = fullStyle
	}
	return labelStyle.Render("pot: ") + style.Render(strings.Join(s.Ingredients, "+"))
}

func boardPart(s *engine.Snapshot) string {
	if len(s.Board) == 0 {
		return ""
	}
	items := make([]string, len(s.Board))
	for i, v := range s.Board {
		switch {
		case v.Sliced:
			items[i] = v.Name + "✓"
		case v.Chopping:
			items[i] = fmt.Sprintf("%s %d%%", v.Name, int(v.Progress*100))
		default:
			items[i] = v.Name
		}
	}
	return labelStyle.Render("board: ") + primaryStyle.Render(strings.Join(items, ", "))
}

func slotsPart(s *engine.Snapshot) string {
	var b strings.Builder
	for _, sl := range s.Slots {
		switch {
		case sl.Dish != nil:
			b.WriteString(dishStyle.Render("[" + initial(sl.Dish.Name) + "]"))
		case sl.Reserved:
			b.WriteString(cookingStyle.Render("[→]"))
		default:
			b.WriteString(sepStyle.Render("[ ]"))
		}
	}
	out := labelStyle.Render("serve: ") + b.String()
	if n := len(s.Ready); n > 0 {
		style := dishStyle
		if s.Full() {
			style = fullStyle
		}
		out += style.Render(fmt.Sprintf(" %d waiting", n))
	}
	return out
}

func scorePart(s *engine.Snapshot) string {
	return labelStyle.Render("score: ") + primaryStyle.Render(fmt.Sprintf("%d", s.Score)) +
		secondaryStyle.Render(fmt.Sprintf(" (best %d)", s.Best))
}

// ── Helpers ──────────────────────────────────────────────────────

func progressBar(p float64, width int) string {
	filled := int(p * float64(width))
	filled = max(0, min(filled, width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func initial(name string) string {
	for _, r := range name {
		return strings.ToUpper(string(r))
	}
	return "?"
}

func fmtDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	if d < 10*time.Second {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	d = d.Round(time.Second)
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	if m == 0 {
		return fmt.Sprintf("%ds", s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}
