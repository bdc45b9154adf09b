// Licensed to NASA JPL under one or more contributor
// license agreements. See the NOTICE file distributed with
// this work for additional information regarding copyright
// ownership. NASA JPL licenses this file to you under
// the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fibtoolbox/tiffscale/core/logger"
	"github.com/google/go-cmp/cmp"
)

func Test_InitializeConfigWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(path, []byte(`{"OutputDirName": "calibrated", "WriteScalebar": true, "Workers": 3}`), 0666)
	if err != nil {
		t.Fatal(err)
	}

	cfg, err := NewConfigFromFile(path)
	if err != nil {
		t.Fatalf("Error initializing config: %v", err)
	}

	want := Defaults()
	want.OutputDirName = "calibrated"
	want.WriteScalebar = true
	want.Workers = 3

	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	if cfg.WorkerCount() != 3 {
		t.Errorf("WorkerCount got %v", cfg.WorkerCount())
	}
}

func Test_MissingConfigFile(t *testing.T) {
	_, err := NewConfigFromFile(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Errorf("expected error")
	}
}

func Test_OverrideConfigWithEnvVars(t *testing.T) {
	t.Setenv("TIFFSCALE_CONFIG_OutputDirName", "from-env")
	t.Setenv("TIFFSCALE_CONFIG_WriteCropped", "true")
	t.Setenv("TIFFSCALE_CONFIG_Workers", "2")
	t.Setenv("TIFFSCALE_CONFIG_FontPaths", "/a.ttf,/b.ttf")
	t.Setenv("TIFFSCALE_CONFIG_LogLevel", "DEBUG")

	cfg, err := NewConfigFromJSON([]byte(`{"OutputDirName": "from-json", "Compression": "none"}`))
	if err != nil {
		t.Fatalf("Error initializing config: %v", err)
	}

	if cfg.OutputDirName != "from-env" {
		t.Errorf("OutputDirName got %q", cfg.OutputDirName)
	}
	if !cfg.WriteCropped || cfg.Workers != 2 || cfg.Compression != "none" {
		t.Errorf("got %+v", cfg)
	}
	if diff := cmp.Diff([]string{"/a.ttf", "/b.ttf"}, cfg.FontPaths); diff != "" {
		t.Errorf("FontPaths mismatch (-want +got):\n%s", diff)
	}
	if cfg.Level() != logger.LogDebug {
		t.Errorf("Level got %v", cfg.Level())
	}
}

func Test_BadEnvVars(t *testing.T) {
	t.Setenv("TIFFSCALE_CONFIG_Workers", "lots")
	if _, err := Load(""); err == nil || err.Error() != "could not read TIFFSCALE_CONFIG_Workers=lots as int" {
		t.Errorf("got %v", err)
	}
}

func Test_Validate(t *testing.T) {
	tests := []struct {
		modify func(c *Config)
		err    string
	}{
		{func(c *Config) {}, ""},
		{func(c *Config) { c.LogLevel = "LOUD" }, "invalid LogLevel: LOUD"},
		{func(c *Config) { c.Compression = "jpeg" }, "unknown compression: jpeg"},
		{func(c *Config) { c.Workers = -1 }, "invalid Workers: -1"},
		{func(c *Config) { c.OutputDirName = "a/b" }, "OutputDirName must be a plain directory name: a/b"},
	}

	for _, tc := range tests {
		cfg := Defaults()
		tc.modify(&cfg)
		err := cfg.Validate()
		got := ""
		if err != nil {
			got = err.Error()
		}
		if got != tc.err {
			t.Errorf("got %q, want %q", got, tc.err)
		}
	}
}

func Test_WorkerCountDefault(t *testing.T) {
	if n := Defaults().WorkerCount(); n < 1 {
		t.Errorf("WorkerCount got %v", n)
	}
}
