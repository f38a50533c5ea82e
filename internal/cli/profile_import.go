package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/kevinburke/ssh_config"
	"github.com/spf13/cobra"

	"github.com/sshdeck/sshdeck/internal/errors"
	"github.com/sshdeck/sshdeck/internal/store"
	"github.com/sshdeck/sshdeck/internal/ui"
)

var profileImportFile string

var profileImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import hosts from ~/.ssh/config as profiles",
	Long: `Import concrete Host entries from your SSH config as connection profiles.

Wildcard patterns are skipped, as are aliases whose title is already
taken. Imported profiles have no password; set one with
'sshdeck profile edit <title> --password ...' before running commands
against them.

Examples:
  sshdeck profile import
  sshdeck profile import --file ./ssh_config`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return profileImportCommand(profileImportFile)
	},
}

func init() {
	profileImportCmd.Flags().StringVar(&profileImportFile, "file", "", "SSH config file (default ~/.ssh/config)")
}

func profileImportCommand(path string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}

	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot locate home directory", "Pass --file explicitly")
		}
		path = filepath.Join(home, ".ssh", "config")
	}

	profiles, err := parseSSHConfigProfiles(path)
	if err != nil {
		return err
	}
	if len(profiles) == 0 {
		fmt.Println("No importable hosts found.")
		return nil
	}

	imported := 0
	for _, p := range profiles {
		if err := s.AddProfile(p); err != nil {
			if errors.IsDuplicateTitle(err) {
				fmt.Printf("%s Skipped '%s' (title already exists)\n", ui.SymbolSkipped, p.Title)
				continue
			}
			return err
		}
		fmt.Printf("%s Imported '%s' (%s@%s)\n", ui.SymbolSuccess, p.Title, p.Username, p.Host)
		imported++
	}
	fmt.Printf("\nImported %d of %d host(s).\n", imported, len(profiles))
	return nil
}

// parseSSHConfigProfiles reads concrete Host entries from an SSH config
// file. A missing file yields no profiles, not an error.
func parseSSHConfigProfiles(path string) ([]store.Profile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot read SSH config: "+path, "Check file permissions")
	}

	cfg, err := ssh_config.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot parse SSH config: "+path, "")
	}

	var profiles []store.Profile
	seen := make(map[string]bool)

	for _, host := range cfg.Hosts {
		for _, pattern := range host.Patterns {
			alias := pattern.String()

			// Skip wildcards and special patterns
			if strings.ContainsAny(alias, "*?!") {
				continue
			}
			if seen[alias] {
				continue
			}
			seen[alias] = true

			p := store.Profile{Title: alias, Host: alias}
			if hostname, _ := cfg.Get(alias, "HostName"); hostname != "" {
				p.Host = hostname
			}
			if user, _ := cfg.Get(alias, "User"); user != "" {
				p.Username = user
			}
			if port, _ := cfg.Get(alias, "Port"); port != "" {
				if n, err := strconv.Atoi(port); err == nil {
					p.Port = n
				}
			}
			profiles = append(profiles, p)
		}
	}

	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].Title < profiles[j].Title
	})
	return profiles, nil
}
