package cli

import (
	"github.com/charmbracelet/huh"

	"github.com/sshdeck/sshdeck/internal/config"
	"github.com/sshdeck/sshdeck/internal/deviceid"
	"github.com/sshdeck/sshdeck/internal/errors"
	"github.com/sshdeck/sshdeck/internal/store"
	"github.com/sshdeck/sshdeck/internal/syncer"
)

// openStore opens the local credential store at the configured data dir.
func openStore(cfg *config.Config) (store.Store, error) {
	return store.NewFileStore(cfg.DataDir)
}

// cloudClient builds a sync client from the configured session. Fails when
// the user hasn't logged in yet.
func cloudClient(cfg *config.Config) (*syncer.Client, error) {
	if !cfg.Cloud.LoggedIn() {
		return nil, errors.New(errors.ErrAuth,
			"Not logged in to a cloud account",
			"Run 'sshdeck login' first, or 'sshdeck register' to create an account.")
	}
	return syncer.NewClient(cfg.Cloud.URL, cfg.Cloud.Token), nil
}

// deviceName returns the configured device name, defaulting to the
// hostname.
func deviceName(cfg *config.Config) string {
	if cfg.Cloud.DeviceName != "" {
		return cfg.Cloud.DeviceName
	}
	return deviceid.DefaultName()
}

// promptIfEmpty asks for value interactively when the flag wasn't given.
// Secret values are masked.
func promptIfEmpty(value *string, title string, secret bool) error {
	if *value != "" {
		return nil
	}

	input := huh.NewInput().Title(title).Value(value)
	if secret {
		input = input.EchoMode(huh.EchoModePassword)
	}

	if err := huh.NewForm(huh.NewGroup(input)).Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input",
			"Pass the value as a flag to skip the prompt")
	}
	if *value == "" {
		return errors.New(errors.ErrConfig, title+" is required", "")
	}
	return nil
}

// saveConfig writes cfg back to its on-disk location.
func saveConfig(cfg *config.Config) error {
	path, err := config.Find(configFlag)
	if err != nil {
		return err
	}
	if path == "" {
		path = config.GlobalPath()
	}
	if path == "" {
		return errors.New(errors.ErrConfig,
			"Cannot determine where to write config",
			"Pass an explicit path with --config")
	}
	return config.Save(cfg, path)
}
