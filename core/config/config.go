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

// Tool configuration as read from JSON, with environment variable overrides. Command line
// flags are applied on top of this by the tools themselves
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"runtime"
	"strconv"
	"strings"

	"github.com/fibtoolbox/tiffscale/core/logger"
	"github.com/fibtoolbox/tiffscale/core/tiffmeta"
	"github.com/pkg/errors"
)

// EnvPrefix - Config.X can be overridden with environment variable TIFFSCALE_CONFIG_X
const EnvPrefix = "TIFFSCALE_CONFIG_"

// Config combines env vars and config JSON values
type Config struct {
	LogLevel string // DEBUG, INFO or ERROR

	// Output directories are created next to the input directory. If OutputDirName is empty, the
	// input directory name prefixed with ScaledDirPrefix is used
	OutputDirName     string
	ScaledDirPrefix   string
	CutDirPrefix      string
	ScalebarDirPrefix string

	WriteScalebar bool
	WriteCropped  bool
	SkipExisting  bool // Don't reprocess files whose output already exists

	Workers     int32 // 0 means one less than the number of CPUs
	Compression string

	// Font files tried in order for scalebar labels, before falling back to the built-in font
	FontPaths []string

	// Prometheus text file written at the end of a run
	MetricsFile string

	SentryDSN       string
	EnvironmentName string

	AWSRegion string
}

// Defaults - what you get with no config file and no env vars
func Defaults() Config {
	return Config{
		LogLevel:          logger.LogInfo.String(),
		ScaledDirPrefix:   "scaled_",
		CutDirPrefix:      "cut_",
		ScalebarDirPrefix: "nsb_",
		Compression:       string(tiffmeta.CompressionDeflate),
		FontPaths: []string{
			"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
			"C:\\Windows\\Fonts\\arial.ttf",
		},
		EnvironmentName: "local",
	}
}

// NewConfigFromFile - defaults, overwritten by any fields in the JSON file, overwritten by env vars
func NewConfigFromFile(configFilePath string) (Config, error) {
	configJSON, err := os.ReadFile(configFilePath)
	if err != nil {
		return Defaults(), errors.Wrapf(err, "could not read config file at %s", configFilePath)
	}
	return NewConfigFromJSON(configJSON)
}

// NewConfigFromJSON - as NewConfigFromFile
func NewConfigFromJSON(configJSON []byte) (Config, error) {
	cfg := Defaults()

	if len(configJSON) > 0 {
		err := json.Unmarshal(configJSON, &cfg)
		if err != nil {
			return cfg, errors.Wrap(err, "failed to parse config")
		}
	}

	err := applyEnvOverrides(&cfg, os.LookupEnv)
	if err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

// Load - from the file if one is given, otherwise defaults and env vars only
func Load(configFilePath string) (Config, error) {
	if len(configFilePath) > 0 {
		return NewConfigFromFile(configFilePath)
	}
	return NewConfigFromJSON(nil)
}

// Override Config with any values explicitly set in Env Vars (TIFFSCALE_CONFIG_*)
// NOTE: For []string slices, pass in a comma-separated string
//
//	Ex: export TIFFSCALE_CONFIG_FontPaths="/fonts/a.ttf,/fonts/b.ttf"
func applyEnvOverrides(cfg *Config, lookup func(string) (string, bool)) error {
	reflection := reflect.ValueOf(cfg).Elem()
	for i := 0; i < reflection.NumField(); i++ {
		fieldName := reflection.Type().Field(i).Name
		field := reflection.Field(i)
		envName := EnvPrefix + fieldName

		val, present := lookup(envName)
		if !present {
			continue
		}

		switch field.Kind() {
		case reflect.String:
			field.SetString(val)
		case reflect.Slice:
			if field.Type().Elem().Kind() == reflect.String {
				sliced := []string{}
				if len(val) > 0 {
					sliced = strings.Split(val, ",")
				}
				field.Set(reflect.ValueOf(sliced))
			}
		case reflect.Bool:
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("could not read %v=%v as bool", envName, val)
			}
			field.SetBool(b)
		case reflect.Int32:
			n, err := strconv.ParseInt(val, 10, 32)
			if err != nil {
				return fmt.Errorf("could not read %v=%v as int", envName, val)
			}
			field.SetInt(n)
		}
	}

	return nil
}

// Validate - checks the fields that have a fixed set of values
func (c Config) Validate() error {
	if _, ok := logger.LogLevelFromString(c.LogLevel); !ok {
		return fmt.Errorf("invalid LogLevel: %v", c.LogLevel)
	}
	if _, err := tiffmeta.ParseCompression(c.Compression); err != nil {
		return err
	}
	if c.Workers < 0 {
		return fmt.Errorf("invalid Workers: %v", c.Workers)
	}
	if strings.ContainsAny(c.OutputDirName, "/\\") {
		return fmt.Errorf("OutputDirName must be a plain directory name: %v", c.OutputDirName)
	}
	return nil
}

// Level - LogLevel as a logger level, INFO if not valid
func (c Config) Level() logger.LogLevel {
	level, _ := logger.LogLevelFromString(c.LogLevel)
	return level
}

// WorkerCount - Workers, or if that's not set, one less than the CPU count (but at least 1)
func (c Config) WorkerCount() int {
	if c.Workers > 0 {
		return int(c.Workers)
	}

	n := runtime.NumCPU() - 1
	if n < 1 {
		n = 1
	}
	return n
}
