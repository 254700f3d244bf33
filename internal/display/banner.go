package display

import (
	_ "embed"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
)

//go:embed banner.txt
var bannerArt string

// RenderBanner returns the logo followed by the given subtitle lines, all
// centred as one block for the current terminal width.
func RenderBanner(subtitles ...string) string {
	lines := strings.Split(strings.TrimRight(bannerArt, "\n"), "\n")
	if len(subtitles) > 0 {
		lines = append(lines, "")
		lines = append(lines, subtitles...)
	}
	return centre(lines, termWidth())
}

// centre pads every line by the same amount so the block sits in the
// middle of width columns. Lines keep their relative indentation.
func centre(lines []string, width int) string {
	block := 0
	for _, l := range lines {
		block = max(block, lipgloss.Width(l))
	}
	pad := ""
	if width > block {
		pad = strings.Repeat(" ", (width-block)/2)
	}

	var b strings.Builder
	for _, l := range lines {
		if l != "" {
			b.WriteString(pad)
			b.WriteString(BannerStyle.Render(l))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// termWidth returns the terminal column count, 80 when stdout is not a
// terminal.
func termWidth() int {
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
		return w
	}
	return 80
}
