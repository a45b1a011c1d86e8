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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefault_PassesValidate(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoad_NoPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "skiros.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
robot_name = "robot-7"
skill_list = ["skiros:Grasp", "skiros:Place"]

[planner]
binary = "downward"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "robot-7", cfg.RobotName)
	require.Equal(t, []string{"skiros:Grasp", "skiros:Place"}, cfg.SkillList)
	require.Equal(t, "downward", cfg.Planner.Binary)
	// Untouched fields keep their default.
	require.Equal(t, "skiros", cfg.Prefix)
}

func TestLoad_MissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "skiros.toml")
	require.NoError(t, os.WriteFile(path, []byte(`robot_name = "robot-7"`), 0o644))

	t.Setenv("SKIROS_ROBOT_NAME", "robot-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "robot-env", cfg.RobotName)
}

func TestValidate_RejectsMissingRobotName(t *testing.T) {
	cfg := Default()
	cfg.RobotName = ""
	require.Error(t, cfg.Validate())
}

func TestValidate_RejectsMissingPlannerBinary(t *testing.T) {
	cfg := Default()
	cfg.Planner.Binary = ""
	require.Error(t, cfg.Validate())
}
