package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sshdeck/sshdeck/internal/errors"
)

// newStores returns one of each Store implementation so the contract tests
// run against both.
func newStores(t *testing.T) map[string]Store {
	t.Helper()
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	return map[string]Store{
		"file":   fs,
		"memory": NewMemStore(),
	}
}

func TestAddProfileDuplicateTitle(t *testing.T) {
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.AddProfile(Profile{Title: "web", Host: "10.0.0.1", Username: "deploy", Password: "pw"}))

			err := s.AddProfile(Profile{Title: "web", Host: "10.0.0.2", Username: "other", Password: "pw"})
			require.Error(t, err)
			assert.True(t, errors.IsDuplicateTitle(err))

			// The failed add must not leave a partial write behind.
			profiles, err := s.ListProfiles()
			require.NoError(t, err)
			require.Len(t, profiles, 1)
			assert.Equal(t, "10.0.0.1", profiles[0].Host)
		})
	}
}

func TestAddProfileDefaultsPort(t *testing.T) {
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.AddProfile(Profile{Title: "web", Host: "10.0.0.1", Username: "deploy", Password: "pw"}))
			p, err := s.GetProfile("web")
			require.NoError(t, err)
			assert.Equal(t, 22, p.Port)
		})
	}
}

func TestRenameProfileCascades(t *testing.T) {
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.AddProfile(Profile{Title: "staging", Host: "s1", Username: "u", Password: "p"}))
			require.NoError(t, s.AddProfile(Profile{Title: "prod", Host: "p1", Username: "u", Password: "p"}))
			require.NoError(t, s.AddCommand(Command{Title: "deploy", Command: "make deploy", Profile: "staging"}))
			require.NoError(t, s.AddCommand(Command{Title: "logs", Command: "tail -f app.log", Profile: "prod"}))
			require.NoError(t, s.AddCommand(Command{Title: "restart", Command: "systemctl restart app", Profile: "staging"}))

			require.NoError(t, s.RenameProfile("staging", "stage-eu"))

			commands, err := s.ListCommands()
			require.NoError(t, err)
			byTitle := map[string]Command{}
			for _, c := range commands {
				byTitle[c.Title] = c
			}
			assert.Equal(t, "stage-eu", byTitle["deploy"].Profile)
			assert.Equal(t, "stage-eu", byTitle["restart"].Profile)
			// Commands bound to other profiles are untouched.
			assert.Equal(t, "prod", byTitle["logs"].Profile)

			_, err = s.GetProfile("staging")
			assert.True(t, errors.IsProfileNotFound(err))
		})
	}
}

func TestRenameProfileRejectsTakenTitle(t *testing.T) {
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.AddProfile(Profile{Title: "a", Host: "h", Username: "u", Password: "p"}))
			require.NoError(t, s.AddProfile(Profile{Title: "b", Host: "h", Username: "u", Password: "p"}))

			err := s.RenameProfile("a", "b")
			assert.True(t, errors.IsDuplicateTitle(err))
		})
	}
}

func TestDeleteProfileLeavesCommandsDangling(t *testing.T) {
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.AddProfile(Profile{Title: "web", Host: "h", Username: "u", Password: "p"}))
			require.NoError(t, s.AddCommand(Command{Title: "uptime", Command: "uptime", Profile: "web"}))

			require.NoError(t, s.DeleteProfile("web"))

			// The command stays; its reference is now invalid and will fail
			// at execution time.
			commands, err := s.ListCommands()
			require.NoError(t, err)
			require.Len(t, commands, 1)
			assert.Equal(t, "web", commands[0].Profile)
		})
	}
}

func TestAddCommandAssignsNextLineNumber(t *testing.T) {
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.AddCommand(Command{Title: "one", Command: "true", Profile: "web"}))
			require.NoError(t, s.AddCommand(Command{Title: "two", Command: "true", Profile: "web"}))
			require.NoError(t, s.AddCommand(Command{Title: "three", Command: "true", Profile: "web"}))

			commands, err := s.ListCommands()
			require.NoError(t, err)
			require.Len(t, commands, 3)
			assert.Equal(t, []int{1, 2, 3}, lineNumbers(commands))

			// Deleting from the middle leaves a gap; the next add continues
			// from the max.
			require.NoError(t, s.DeleteCommand("two"))
			require.NoError(t, s.AddCommand(Command{Title: "four", Command: "true", Profile: "web"}))

			commands, err = s.ListCommands()
			require.NoError(t, err)
			assert.Equal(t, []int{1, 3, 4}, lineNumbers(commands))
		})
	}
}

func TestAddCommandDuplicateTitle(t *testing.T) {
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.AddCommand(Command{Title: "deploy", Command: "make deploy", Profile: "web"}))

			err := s.AddCommand(Command{Title: "deploy", Command: "make redeploy", Profile: "web"})
			assert.True(t, errors.IsDuplicateTitle(err))

			commands, err := s.ListCommands()
			require.NoError(t, err)
			require.Len(t, commands, 1)
			assert.Equal(t, "make deploy", commands[0].Command)
		})
	}
}

func TestReorderCommands(t *testing.T) {
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.AddCommand(Command{Title: "a", Command: "true", Profile: "web"}))
			require.NoError(t, s.AddCommand(Command{Title: "b", Command: "true", Profile: "web"}))
			require.NoError(t, s.AddCommand(Command{Title: "c", Command: "true", Profile: "web"}))
			require.NoError(t, s.DeleteCommand("b")) // line numbers now 1, 3

			// Move c before a; after the reorder, numbering is dense again.
			require.NoError(t, s.ReorderCommands([]int{3, 1}))

			commands, err := s.ListCommands()
			require.NoError(t, err)
			require.Len(t, commands, 2)
			assert.Equal(t, "c", commands[0].Title)
			assert.Equal(t, "a", commands[1].Title)
			assert.Equal(t, []int{1, 2}, lineNumbers(commands))
		})
	}
}

func TestReorderCommandsValidation(t *testing.T) {
	tests := []struct {
		name  string
		order []int
	}{
		{"wrong length", []int{1}},
		{"duplicate line", []int{1, 1}},
		{"unknown line", []int{1, 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewMemStore()
			require.NoError(t, s.AddCommand(Command{Title: "a", Command: "true", Profile: "web"}))
			require.NoError(t, s.AddCommand(Command{Title: "b", Command: "true", Profile: "web"}))

			err := s.ReorderCommands(tt.order)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrStore))

			// Order unchanged on failure.
			commands, err := s.ListCommands()
			require.NoError(t, err)
			assert.Equal(t, []int{1, 2}, lineNumbers(commands))
		})
	}
}

func TestUpdateCommandKeepsLineNumber(t *testing.T) {
	s := NewMemStore()
	require.NoError(t, s.AddCommand(Command{Title: "a", Command: "true", Profile: "web"}))
	require.NoError(t, s.AddCommand(Command{Title: "b", Command: "true", Profile: "web"}))

	require.NoError(t, s.UpdateCommand("b", Command{Title: "b2", Command: "false", URL: "https://example.com", Profile: "db"}))

	c, err := s.GetCommand("b2")
	require.NoError(t, err)
	assert.Equal(t, 2, c.LineNumber)
	assert.Equal(t, "false", c.Command)
	assert.Equal(t, "db", c.Profile)

	// Renaming onto an existing command title is a conflict.
	err = s.UpdateCommand("b2", Command{Title: "a", Command: "x", Profile: "web"})
	assert.True(t, errors.IsDuplicateTitle(err))
}

func TestReplaceAll(t *testing.T) {
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.AddProfile(Profile{Title: "old", Host: "h", Username: "u", Password: "p"}))
			require.NoError(t, s.AddCommand(Command{Title: "old-cmd", Command: "true", Profile: "old"}))

			profiles := []Profile{{Title: "new", Host: "n", Username: "u", Password: "p", Port: 2222}}
			commands := []Command{{LineNumber: 1, Title: "new-cmd", Command: "uptime", Profile: "new"}}
			require.NoError(t, s.ReplaceAll(profiles, commands))

			gotProfiles, err := s.ListProfiles()
			require.NoError(t, err)
			assert.Equal(t, profiles, gotProfiles)

			gotCommands, err := s.ListCommands()
			require.NoError(t, err)
			assert.Equal(t, commands, gotCommands)
		})
	}
}

func TestFileStorePersistsAcrossOpens(t *testing.T) {
	dir := t.TempDir()

	s, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.AddProfile(Profile{Title: "web", Host: "h", Username: "u", Password: "p"}))
	require.NoError(t, s.AddCommand(Command{Title: "uptime", Command: "uptime", Profile: "web"}))

	reopened, err := NewFileStore(dir)
	require.NoError(t, err)

	profiles, err := reopened.ListProfiles()
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "web", profiles[0].Title)

	commands, err := reopened.ListCommands()
	require.NoError(t, err)
	require.Len(t, commands, 1)
	assert.Equal(t, 1, commands[0].LineNumber)
}

func TestFileStoreRejectsCorruptJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "profiles.json"), []byte("{not json"), 0o600))

	s, err := NewFileStore(dir)
	require.NoError(t, err)

	_, err = s.ListProfiles()
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrStore))
}

func lineNumbers(commands []Command) []int {
	out := make([]int, len(commands))
	for i, c := range commands {
		out[i] = c.LineNumber
	}
	return out
}
