package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	defaultServer  = "http://localhost:8080"
	configDir      = ".chatstream"
	configFileName = "config.json"
	logFileName    = "chatstream.log"

	envServer = "CHATSTREAM_SERVER"
	envToken  = "CHATSTREAM_TOKEN"
)

// config is the resolved connection settings.
type config struct {
	Server string `json:"server"`
	Token  string `json:"token"`
}

// resolveConfig merges settings field by field. Flags win over the
// environment, the environment over the config file.
func resolveConfig(flags, env, file config) config {
	return config{
		Server: firstNonEmpty(flags.Server, env.Server, file.Server, defaultServer),
		Token:  firstNonEmpty(flags.Token, env.Token, file.Token),
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// loadConfigFile reads a config file. A missing file is an error only when
// the path was given explicitly.
func loadConfigFile(path string, explicit bool) (config, error) {
	var cfg config
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist) && !explicit:
		return cfg, nil
	default:
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// stateDir returns ~/.chatstream, or the working directory's .chatstream
// when there is no home directory.
func stateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, configDir)
}
