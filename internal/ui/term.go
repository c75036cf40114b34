package ui

import "github.com/fatih/color"

// Color definitions for consistent styling across the UI.
var (
	// Active slot occupants: bold cyan
	colorActive = color.New(color.FgCyan, color.Bold)

	// Recurring candidates: yellow
	colorRecurring = color.New(color.FgYellow)

	// Completed slots and secondary information
	colorMuted = color.New(color.FgWhite, color.Faint)

	// Stats and confirmations: green
	colorStats = color.New(color.FgGreen)
)

// DisableColor disables all color output.
func DisableColor() {
	color.NoColor = true
}

func formatActive(s string) string {
	return colorActive.Sprint(s)
}

func formatRecurring(s string) string {
	return colorRecurring.Sprint(s)
}

func formatMuted(s string) string {
	return colorMuted.Sprint(s)
}

func formatStats(s string) string {
	return colorStats.Sprint(s)
}
