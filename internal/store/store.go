// Package store implements durable CRUD over SSH profiles and saved commands
// for one owner. The same contract backs both the local JSON file store and
// the cloud configuration document, so sync can replace one with the other
// wholesale.
package store

// DefaultSSHPort is used when a profile doesn't specify a port.
const DefaultSSHPort = 22

// Profile is a named SSH connection target. Title is the identity: commands
// reference profiles by title, not by a stable id, which is why renames must
// cascade (see Store.RenameProfile).
type Profile struct {
	Title    string `json:"title" yaml:"title"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
}

// PortOrDefault returns the port to dial, defaulting to 22.
func (p Profile) PortOrDefault() int {
	if p.Port > 0 {
		return p.Port
	}
	return DefaultSSHPort
}

// Command is a named, ordered shell instruction bound to a profile.
// LineNumber defines display and execution order; after a reorder the values
// are exactly 1..N with no gaps.
type Command struct {
	LineNumber int    `json:"lineNumber" yaml:"lineNumber"`
	Title      string `json:"title" yaml:"title"`
	Command    string `json:"command" yaml:"command"`
	URL        string `json:"url,omitempty" yaml:"url,omitempty"`
	Profile    string `json:"profile" yaml:"profile"`
}

// Store is the credential store contract. Implementations must make each
// write atomic with respect to the owner's whole document; concurrent
// writers are last-write-wins, never interleaved.
type Store interface {
	// ListProfiles returns all profiles in insertion order.
	ListProfiles() ([]Profile, error)

	// GetProfile looks up a profile by title. Returns a ProfileNotFound
	// error when absent.
	GetProfile(title string) (Profile, error)

	// AddProfile appends a profile. Fails with DuplicateTitle if the title
	// is taken.
	AddProfile(p Profile) error

	// UpdateProfile replaces the stored fields of the profile with the given
	// title. The title itself is immutable here; use RenameProfile.
	UpdateProfile(p Profile) error

	// RenameProfile changes a profile's title and updates every command
	// referencing the old title. This is the one relational integrity rule
	// the store enforces actively.
	RenameProfile(oldTitle, newTitle string) error

	// DeleteProfile removes a profile. Commands referencing it are left
	// dangling on purpose; they fail with ProfileNotFound at run time.
	DeleteProfile(title string) error

	// ListCommands returns all commands ordered by line number ascending.
	ListCommands() ([]Command, error)

	// GetCommand looks up a command by title.
	GetCommand(title string) (Command, error)

	// AddCommand appends a command, assigning the next line number
	// (max existing + 1, or 1 for an empty list). Fails with DuplicateTitle
	// if the title is taken.
	AddCommand(c Command) error

	// UpdateCommand replaces the command stored under oldTitle, keeping its
	// line number. Fails with DuplicateTitle when the new title collides
	// with a different command.
	UpdateCommand(oldTitle string, c Command) error

	// ReorderCommands re-maps commands to the submitted order of line
	// numbers, reassigning lineNumber = position+1. Every existing line
	// number must appear exactly once.
	ReorderCommands(order []int) error

	// DeleteCommand removes a command by title. Remaining line numbers are
	// not renumbered; density is only re-established by ReorderCommands.
	DeleteCommand(title string) error

	// ReplaceAll atomically replaces the whole document with the given
	// snapshot. Used by sync pull and pending-push application.
	ReplaceAll(profiles []Profile, commands []Command) error
}

// Snapshot is a whole-document copy of one owner's configuration, as moved
// between local and cloud stores.
type Snapshot struct {
	Profiles []Profile `json:"profiles"`
	Commands []Command `json:"commands"`
}
