package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"hairly/internal/ui/theme"
)

// PaletteSubmitMsg is emitted when the user confirms a command.
type PaletteSubmitMsg struct{ Input string }

// PaletteCancelMsg is emitted when the user presses esc.
type PaletteCancelMsg struct{}

// Command describes one palette verb. Args is shown after the name in hints.
type Command struct {
	Name string
	Args string
}

func (c Command) Usage() string {
	if c.Args == "" {
		return c.Name
	}
	return c.Name + " " + c.Args
}

const (
	maxHints   = 5
	maxHistory = 20
)

var (
	paletteStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Peach).
			Background(theme.Mantle).
			Foreground(theme.Text).
			Padding(0, 1)

	hintStyle   = lipgloss.NewStyle().Foreground(theme.Subtext0)
	activeStyle = lipgloss.NewStyle().Foreground(theme.Peach)
)

// Palette is a command-line overlay. Tab completes the command name and
// up/down walk previously submitted input.
type Palette struct {
	input    textinput.Model
	commands []Command
	history  []string
	recall   int
	visible  bool
	width    int
}

func NewPalette(commands ...Command) Palette {
	ti := textinput.New()
	ti.Placeholder = "type a command…"
	ti.CharLimit = 256
	return Palette{input: ti, commands: commands}
}

func (p Palette) Visible() bool { return p.visible }

// Open shows the palette with an empty input and returns the focus command.
func (p *Palette) Open() tea.Cmd {
	p.visible = true
	p.recall = len(p.history)
	p.input.SetValue("")
	return p.input.Focus()
}

func (p *Palette) SetWidth(w int) { p.width = w }

func (p Palette) Update(msg tea.Msg) (Palette, tea.Cmd) {
	if !p.visible {
		return p, nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			p.close()
			return p, func() tea.Msg { return PaletteCancelMsg{} }
		case "enter":
			val := strings.TrimSpace(p.input.Value())
			p.remember(val)
			p.close()
			return p, func() tea.Msg { return PaletteSubmitMsg{Input: val} }
		case "tab":
			p.complete()
			return p, nil
		case "up":
			p.step(-1)
			return p, nil
		case "down":
			p.step(1)
			return p, nil
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p *Palette) close() {
	p.visible = false
	p.input.Blur()
}

func (p *Palette) remember(val string) {
	if val == "" {
		return
	}
	if n := len(p.history); n > 0 && p.history[n-1] == val {
		return
	}
	p.history = append(p.history, val)
	if len(p.history) > maxHistory {
		p.history = p.history[len(p.history)-maxHistory:]
	}
}

func (p *Palette) step(delta int) {
	next := p.recall + delta
	if next < 0 || next > len(p.history) {
		return
	}
	p.recall = next
	if next == len(p.history) {
		p.input.SetValue("")
	} else {
		p.input.SetValue(p.history[next])
	}
	p.input.CursorEnd()
}

// complete fills in the command name once the typed prefix is unambiguous,
// or extends it to the longest prefix shared by all candidates.
func (p *Palette) complete() {
	typed := p.input.Value()
	if strings.Contains(typed, " ") {
		return
	}
	matches := p.matching(typed)
	if len(matches) == 0 {
		return
	}
	if len(matches) == 1 {
		p.input.SetValue(matches[0].Name + " ")
		p.input.CursorEnd()
		return
	}
	common := matches[0].Name
	for _, c := range matches[1:] {
		for !strings.HasPrefix(c.Name, common) {
			common = common[:len(common)-1]
		}
	}
	if len(common) > len(typed) {
		p.input.SetValue(common)
		p.input.CursorEnd()
	}
}

// matching returns commands whose name starts with the first word of input.
// Once a full name and a space are typed only that command remains.
func (p Palette) matching(input string) []Command {
	word := strings.ToLower(input)
	exact := false
	if i := strings.IndexByte(word, ' '); i >= 0 {
		word, exact = word[:i], true
	}
	var out []Command
	for _, c := range p.commands {
		if (exact && c.Name == word) || (!exact && strings.HasPrefix(c.Name, word)) {
			out = append(out, c)
		}
	}
	return out
}

func (p Palette) View() string {
	if !p.visible {
		return ""
	}
	matches := p.matching(p.input.Value())

	var sb strings.Builder
	sb.WriteString(theme.Heading.Render("Command Palette") + "\n")
	sb.WriteString(": " + p.input.View() + "\n")
	if len(matches) > 0 {
		sb.WriteString("\n")
		for i, c := range matches {
			if i == maxHints {
				sb.WriteString(hintStyle.Render("  …") + "\n")
				break
			}
			style := hintStyle
			if len(matches) == 1 {
				style = activeStyle
			}
			sb.WriteString(style.Render("  "+c.Usage()) + "\n")
		}
	}

	w := p.width
	if w < 20 {
		w = 64
	}
	return paletteStyle.Width(w - 2).Render(sb.String())
}
