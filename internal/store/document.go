package store

import (
	"fmt"
	"sort"

	"github.com/sshdeck/sshdeck/internal/errors"
)

// document holds one owner's profiles and commands in memory. All store
// implementations funnel mutations through these methods so the integrity
// rules (duplicate titles, cascading rename, dense reorder) live in one
// place.
type document struct {
	Profiles []Profile
	Commands []Command
}

func (d *document) listProfiles() []Profile {
	out := make([]Profile, len(d.Profiles))
	copy(out, d.Profiles)
	return out
}

func (d *document) getProfile(title string) (Profile, error) {
	for _, p := range d.Profiles {
		if p.Title == title {
			return p, nil
		}
	}
	return Profile{}, errors.NewProfileNotFound(title)
}

func (d *document) addProfile(p Profile) error {
	for _, existing := range d.Profiles {
		if existing.Title == p.Title {
			return errors.NewDuplicateTitle("profile", p.Title)
		}
	}
	if p.Port == 0 {
		p.Port = DefaultSSHPort
	}
	d.Profiles = append(d.Profiles, p)
	return nil
}

func (d *document) updateProfile(p Profile) error {
	for i, existing := range d.Profiles {
		if existing.Title == p.Title {
			if p.Port == 0 {
				p.Port = DefaultSSHPort
			}
			d.Profiles[i] = p
			return nil
		}
	}
	return errors.NewProfileNotFound(p.Title)
}

// renameProfile changes the title and cascades the new title into every
// command that referenced the old one. Commands referencing other profiles
// are untouched.
func (d *document) renameProfile(oldTitle, newTitle string) error {
	if oldTitle == newTitle {
		return nil
	}
	for _, existing := range d.Profiles {
		if existing.Title == newTitle {
			return errors.NewDuplicateTitle("profile", newTitle)
		}
	}
	idx := -1
	for i, existing := range d.Profiles {
		if existing.Title == oldTitle {
			idx = i
			break
		}
	}
	if idx == -1 {
		return errors.NewProfileNotFound(oldTitle)
	}

	d.Profiles[idx].Title = newTitle
	for i := range d.Commands {
		if d.Commands[i].Profile == oldTitle {
			d.Commands[i].Profile = newTitle
		}
	}
	return nil
}

// deleteProfile removes the profile only. Dangling command references are
// intentional; they surface as ProfileNotFound when the command is run.
func (d *document) deleteProfile(title string) error {
	for i, existing := range d.Profiles {
		if existing.Title == title {
			d.Profiles = append(d.Profiles[:i], d.Profiles[i+1:]...)
			return nil
		}
	}
	return errors.NewProfileNotFound(title)
}

func (d *document) listCommands() []Command {
	out := make([]Command, len(d.Commands))
	copy(out, d.Commands)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LineNumber < out[j].LineNumber
	})
	return out
}

func (d *document) getCommand(title string) (Command, error) {
	for _, c := range d.Commands {
		if c.Title == title {
			return c, nil
		}
	}
	return Command{}, errors.New(errors.ErrStore,
		fmt.Sprintf("Command '%s' not found", title),
		"Run 'sshdeck cmd list' to see saved commands.")
}

func (d *document) addCommand(c Command) error {
	for _, existing := range d.Commands {
		if existing.Title == c.Title {
			return errors.NewDuplicateTitle("command", c.Title)
		}
	}
	next := 1
	for _, existing := range d.Commands {
		if existing.LineNumber >= next {
			next = existing.LineNumber + 1
		}
	}
	c.LineNumber = next
	d.Commands = append(d.Commands, c)
	return nil
}

func (d *document) updateCommand(oldTitle string, c Command) error {
	idx := -1
	for i, existing := range d.Commands {
		if existing.Title == oldTitle {
			idx = i
			break
		}
	}
	if idx == -1 {
		return errors.New(errors.ErrStore,
			fmt.Sprintf("Command '%s' not found", oldTitle),
			"Run 'sshdeck cmd list' to see saved commands.")
	}
	if c.Title != oldTitle {
		for _, existing := range d.Commands {
			if existing.Title == c.Title {
				return errors.NewDuplicateTitle("command", c.Title)
			}
		}
	}
	// Line number is positional, not part of the edit surface.
	c.LineNumber = d.Commands[idx].LineNumber
	d.Commands[idx] = c
	return nil
}

// reorderCommands re-maps the list to the submitted order of current line
// numbers, reassigning lineNumber = position+1. This is the persistence step
// behind drag-reorder in the UI.
func (d *document) reorderCommands(order []int) error {
	if len(order) != len(d.Commands) {
		return errors.New(errors.ErrStore,
			fmt.Sprintf("Reorder needs all %d commands, got %d", len(d.Commands), len(order)),
			"Submit every current line number exactly once.")
	}

	byLine := make(map[int]Command, len(d.Commands))
	for _, c := range d.Commands {
		byLine[c.LineNumber] = c
	}

	reordered := make([]Command, 0, len(order))
	seen := make(map[int]bool, len(order))
	for pos, line := range order {
		if seen[line] {
			return errors.New(errors.ErrStore,
				fmt.Sprintf("Line number %d appears twice in the new order", line),
				"Submit every current line number exactly once.")
		}
		seen[line] = true
		c, ok := byLine[line]
		if !ok {
			return errors.New(errors.ErrStore,
				fmt.Sprintf("No command has line number %d", line),
				"Submit every current line number exactly once.")
		}
		c.LineNumber = pos + 1
		reordered = append(reordered, c)
	}

	d.Commands = reordered
	return nil
}

func (d *document) deleteCommand(title string) error {
	for i, existing := range d.Commands {
		if existing.Title == title {
			d.Commands = append(d.Commands[:i], d.Commands[i+1:]...)
			return nil
		}
	}
	return errors.New(errors.ErrStore,
		fmt.Sprintf("Command '%s' not found", title),
		"Run 'sshdeck cmd list' to see saved commands.")
}

func (d *document) replaceAll(profiles []Profile, commands []Command) {
	d.Profiles = make([]Profile, len(profiles))
	copy(d.Profiles, profiles)
	d.Commands = make([]Command, len(commands))
	copy(d.Commands, commands)
}
