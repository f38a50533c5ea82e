package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/sshdeck/sshdeck/internal/errors"
)

// Save writes cfg to path as YAML, creating parent directories as needed.
// The file is user-only: it carries the cloud token.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Could not create config directory",
			"Check permissions on "+filepath.Dir(path))
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Could not encode config", "")
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Could not write config file: "+path,
			"Check file permissions")
	}
	return nil
}
