package ui

import (
	"github.com/charmbracelet/huh"

	"github.com/sshdeck/sshdeck/internal/errors"
)

// Confirm prompts the user with a yes/no question. Destructive operations
// (sync push, device removal) must go through this before proceeding.
func Confirm(title, description string) (bool, error) {
	var confirmed bool

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Value(&confirmed),
		),
	)

	if err := form.Run(); err != nil {
		return false, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input",
			"Re-run with --yes to skip the prompt")
	}
	return confirmed, nil
}
