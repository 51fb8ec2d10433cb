package ui

import (
	"strings"

	"github.com/muesli/reflow/padding"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
)

// truncateWidth shortens a string to the given cell width, adding an ellipsis
// if needed. Wide runes count by their display width.
func truncateWidth(value string, width int) string {
	value = strings.TrimSpace(value)
	if width <= 0 {
		return value
	}
	return truncate.StringWithTail(value, uint(width), "…")
}

// padRight pads a string with spaces to the given cell width.
func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	return padding.String(s, uint(width))
}

// wrapText word-wraps prose to width, keeping paragraph breaks.
func wrapText(text string, width int) string {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n"))
	if text == "" {
		return ""
	}
	if width <= 0 {
		return text
	}
	return wordwrap.String(text, width)
}

// joinNonEmpty joins the non-blank values with sep.
func joinNonEmpty(sep string, values ...string) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, sep)
}

// ternary returns a if cond is true, otherwise b.
func ternary(cond bool, a, b string) string {
	if cond {
		return a
	}
	return b
}
