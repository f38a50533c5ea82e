// Package ui provides terminal UI components for sshdeck's CLI output.
//
// The package includes the spinner shown while remote commands run, styled
// tables for profiles, commands, and devices, and the confirmation prompt
// used before destructive sync operations, all built on Lip Gloss for
// consistent terminal styling.
//
// # Color Scheme
//
// Colors are defined as ANSI codes for broad terminal compatibility:
//
//	ColorSuccess   (green)  - Successful operations, online devices
//	ColorError     (red)    - Failures and errors
//	ColorWarning   (yellow) - Warnings, pending pushes
//	ColorInfo      (cyan)   - Informational messages
//	ColorMuted     (gray)   - Secondary text, timing info
//	ColorSecondary (blue)   - In-progress indicators
//
// Use DisableColors() to switch to monochrome output (for --no-color flag
// or dumb terminals).
//
// # Spinner Usage
//
// The Spinner type provides an animated indicator for operations:
//
//	s := ui.NewSpinner("Running on web-1")
//	s.Start()
//	// ... do work ...
//	s.Success() // or s.Fail()
//
// The spinner handles terminal output, clearing lines, and timing display.
package ui
