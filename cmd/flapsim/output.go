package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	goodStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	badStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// styled reports whether stdout is a terminal. Piped output stays plain.
func styled() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func render(style lipgloss.Style, s string) string {
	if !styled() {
		return s
	}
	return style.Render(s)
}

func printHeading(s string) {
	fmt.Println(render(headingStyle, s))
	fmt.Println()
}

// printField prints an aligned "label: value" line.
func printField(label string, value any) {
	fmt.Printf("  %s %v\n", render(labelStyle, fmt.Sprintf("%-14s", label+":")), value)
}

func verdict(ok bool, yes, no string) string {
	if ok {
		return render(goodStyle, yes)
	}
	return render(badStyle, no)
}
