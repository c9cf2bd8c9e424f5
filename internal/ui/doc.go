// Package ui renders issho's terminal output: status spinners, the byte
// transfer bar, the tunnel status view and the interactive pickers used by
// `issho config`.
//
// Everything styles through lipgloss with the ANSI palette in colors.go.
// DisableColors switches to monochrome for --no-color and NO_COLOR.
//
// Components degrade when output isn't a terminal: the spinner prints only
// its final line and the transfer bar falls back to a plain text line.
package ui
