package cmd

import (
	"github.com/fatih/color"

	"github.com/khanhnv2901/seca-scan/internal/checker"
)

var (
	colorSuccess = color.New(color.FgGreen).SprintFunc()
	colorInfo    = color.New(color.FgCyan).SprintFunc()
	colorWarn    = color.New(color.FgYellow).SprintFunc()
	colorError   = color.New(color.FgRed).SprintFunc()
)

func formatStatusWithColor(status checker.Status) string {
	switch status {
	case checker.StatusPass:
		return colorSuccess(string(status))
	case checker.StatusFail:
		return colorWarn(string(status))
	case checker.StatusError:
		return colorError(string(status))
	default:
		return string(status)
	}
}

func colorForExit(code int) func(a ...interface{}) string {
	switch code {
	case ExitIncomplete, ExitFindings:
		return colorWarn
	default:
		return colorError
	}
}
