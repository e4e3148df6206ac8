package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// config is the optional .treepath.yml file. Flags override file values;
// zero values fall back to defaults.
type config struct {
	Format            string `yaml:"format"`
	DB                string `yaml:"db"`
	Session           string `yaml:"session"`
	MarkerCapacity    int    `yaml:"marker_capacity"`
	StatementCapacity int    `yaml:"statement_capacity"`
	Strict            bool   `yaml:"strict"`
}

var cfg config

const defaultConfigFile = ".treepath.yml"

// loadConfig reads the config file and resolves the effective settings
// into the flag variables. A missing default config file is fine; a
// missing explicit --config is an error.
func loadConfig(path string) error {
	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		// No config file, defaults apply.
	default:
		return fmt.Errorf("config %s: %w", path, err)
	}

	if flagFormat == "" {
		flagFormat = cfg.Format
	}
	if flagFormat == "" {
		flagFormat = "json"
	}
	if flagDB == "" {
		flagDB = cfg.DB
	}
	if flagDB == "" {
		flagDB = ".treepath/sessions.db"
	}
	if flagSession == "" {
		flagSession = cfg.Session
	}
	if flagSession == "" {
		flagSession = "default"
	}
	return nil
}
