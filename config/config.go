// Copyright 2017 The go-probeum Authors
// This file is part of go-probeum.
//
// go-probeum is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-probeum is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-probeum. If not, see <http://www.gnu.org/licenses/>.

// Package config loads the bridge daemon's TOML configuration file, with
// the same field-name-matching and error-annotation behavior the gprobe
// binary uses for its own config file.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"reflect"
	"unicode"

	"github.com/naoina/toml"
)

// tomlSettings keeps TOML keys identical to the Go struct field names,
// and turns an unknown field into an error that names the offending type
// instead of toml's default generic message.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		id := fmt.Sprintf("%s.%s", rt.String(), field)
		var link string
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://godoc.org/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

// StoreConfig selects and configures the chain-store backend.
type StoreConfig struct {
	// Backend is "memory" or "leveldb".
	Backend string
	// Path is the leveldb data directory. Ignored for the memory backend.
	Path string `toml:",omitempty"`
}

// MetricsConfig controls the Prometheus exporter.
type MetricsConfig struct {
	Enabled bool
	// Addr is loaded from the file but not read by cmd/ethbridge: when
	// Enabled is set, `serve` mounts /metrics on its own listen address.
	Addr string `toml:",omitempty"`
}

// ServeConfig controls the read-only HTTP query surface.
type ServeConfig struct {
	Enabled bool
	Addr    string `toml:",omitempty"`
}

// Config is the bridge daemon's full configuration, as loaded from a TOML
// file and overridden by command-line flags.
type Config struct {
	Store   StoreConfig
	Metrics MetricsConfig
	Serve   ServeConfig
}

// Defaults mirrors the teacher's defaultNodeConfig: a config a caller can
// start from and override selectively, rather than a zero Config.
var Defaults = Config{
	Store: StoreConfig{
		Backend: "leveldb",
	},
	Metrics: MetricsConfig{
		Enabled: false,
		Addr:    "127.0.0.1:6060",
	},
	Serve: ServeConfig{
		Enabled: false,
		Addr:    "127.0.0.1:8545",
	},
}

// Load reads a TOML file at path into cfg. cfg should already hold
// Defaults (or another baseline) so that fields the file omits keep their
// prior values.
func Load(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	var lineErr *toml.LineError
	if errors.As(err, &lineErr) {
		err = fmt.Errorf("%s, %w", path, err)
	}
	return err
}
