/*
   Copyright 2026 The skiros-go Authors

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Package config loads the runtime's configuration, grounded on
// original_source/skiros2_skill/ros/skill_manager.py's SkillManagerNode
// constructor arguments (prefix, agent_name, verbose, workspace,
// libraries/skills/primitives to load) reshaped into a TOML file per
// AS-2, the way emergent-company-specmcp's internal/config package loads
// its own service configuration.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the top-level runtime configuration.
type Config struct {
	Prefix        string   `toml:"prefix"`
	RobotName     string   `toml:"robot_name"`
	RobotType     string   `toml:"robot_type"`
	Verbose       bool     `toml:"verbose"`
	WorkspaceDir  string   `toml:"workspace_dir"`
	LibrariesList []string `toml:"libraries_list"`
	SkillList     []string `toml:"skill_list"`
	PrimitiveList []string `toml:"primitive_list"`

	Planner PlannerConfig `toml:"planner"`
}

// PlannerConfig configures the PDDL compiler's external planner
// subprocess. The tick engine's cadence is a fixed 25Hz invariant
// (ticker.Rate), not a config knob, so it has no field here.
type PlannerConfig struct {
	Binary string `toml:"binary"`
}

// Default returns the baseline configuration applied before any file or
// environment overrides.
func Default() *Config {
	return &Config{
		Prefix:       "skiros",
		RobotName:    "robot-0",
		RobotType:    "skiros:Robot",
		Verbose:      true,
		WorkspaceDir: "./workspace",
		Planner: PlannerConfig{
			Binary: "plan.py",
		},
	}
}

// Load reads configPath (if non-empty) as TOML over the defaults, then
// layers environment variable overrides on top, matching
// emergent-company-specmcp's Load precedence (env > file > defaults).
func Load(configPath string) (*Config, error) {
	cfg := Default()
	if configPath != "" {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", configPath, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	envOverride("SKIROS_PREFIX", &c.Prefix)
	envOverride("SKIROS_ROBOT_NAME", &c.RobotName)
	envOverride("SKIROS_ROBOT_TYPE", &c.RobotType)
	envOverride("SKIROS_WORKSPACE_DIR", &c.WorkspaceDir)
	envOverride("SKIROS_PLANNER_BINARY", &c.Planner.Binary)
	if v := os.Getenv("SKIROS_VERBOSE"); v != "" {
		c.Verbose = v == "true" || v == "1"
	}
}

// Validate checks the fields the rest of the runtime cannot safely
// default around.
func (c *Config) Validate() error {
	if c.RobotName == "" {
		return fmt.Errorf("config: robot_name is required")
	}
	if c.Planner.Binary == "" {
		return fmt.Errorf("config: planner.binary is required")
	}
	return nil
}

func envOverride(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
