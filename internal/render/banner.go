// Package render draws the terminal surface: the startup banner and the
// schedule table. It only formats; all event semantics live upstream.
package render

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var bannerLines = []string{
	" ██████╗   █████╗  ██╗   ██╗ ██████╗  ██╗       █████╗  ███╗   ██╗",
	" ██╔══██╗ ██╔══██╗ ╚██╗ ██╔╝ ██╔══██╗ ██║      ██╔══██╗ ████╗  ██║",
	" ██║  ██║ ███████║  ╚████╔╝  ██████╔╝ ██║      ███████║ ██╔██╗ ██║",
	" ██║  ██║ ██╔══██║   ╚██╔╝   ██╔═══╝  ██║      ██╔══██║ ██║╚██╗██║",
	" ██████╔╝ ██║  ██║    ██║    ██║      ███████╗ ██║  ██║ ██║ ╚████║",
	" ╚═════╝  ╚═╝  ╚═╝    ╚═╝    ╚═╝      ╚══════╝ ╚═╝  ╚═╝ ╚═╝  ╚═══╝",
}

var mascotLines = []string{
	"Welcome to dayplan!",
	"  /\\_/\\",
	" ( o.o )  Plan the day before it plans you.",
	"  >   <",
}

type rgb struct{ r, g, b int }

var (
	bannerFrom = rgb{0xff, 0xa5, 0x00} // orange
	bannerTo   = rgb{0x00, 0x66, 0xff} // blue
)

// Banner returns either the big-type gradient banner or the mascot one,
// chosen at random, with the version line right-aligned underneath.
func Banner(version string) string {
	if rand.IntN(2) == 0 {
		return GradientBanner(version)
	}
	return MascotBanner(version)
}

// GradientBanner renders the block-letter banner with a left-to-right
// color gradient.
func GradientBanner(version string) string {
	width := 0
	for _, line := range bannerLines {
		if n := len([]rune(line)); n > width {
			width = n
		}
	}

	var b strings.Builder
	b.WriteString("\n Welcome to\n")
	for _, line := range bannerLines {
		b.WriteString(gradientLine(line, width))
		b.WriteByte('\n')
	}
	b.WriteString(versionLine(version, width))
	return b.String()
}

// MascotBanner renders the small ASCII mascot banner.
func MascotBanner(version string) string {
	var b strings.Builder
	b.WriteByte('\n')
	for _, line := range mascotLines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteString(versionLine(version, 0))
	return b.String()
}

func versionLine(version string, width int) string {
	v := fmt.Sprintf("CLI Version %s", version)
	if pad := width - len(v); pad > 0 {
		return strings.Repeat(" ", pad) + v + "\n"
	}
	return v + "\n"
}

// gradientLine colors each rune by linear interpolation between the banner
// colors, spread over the banner's full width.
func gradientLine(line string, width int) string {
	runes := []rune(line)
	var b strings.Builder
	for i, r := range runes {
		t := float64(i) / float64(max(1, width-1))
		c := lipgloss.Color(fmt.Sprintf("#%02x%02x%02x",
			lerp(bannerFrom.r, bannerTo.r, t),
			lerp(bannerFrom.g, bannerTo.g, t),
			lerp(bannerFrom.b, bannerTo.b, t),
		))
		b.WriteString(lipgloss.NewStyle().Foreground(c).Render(string(r)))
	}
	return b.String()
}

func lerp(a, b int, t float64) int {
	return a + int(float64(b-a)*t)
}
