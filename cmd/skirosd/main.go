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

// Command skirosd is the process entrypoint: it loads configuration,
// wires the in-memory world model, the skill manager and the tick
// engine together, registers the configured robot and its demo skills,
// then runs a single demo task to completion. Grounded on
// original_source/skiros2_skill/ros/skill_manager.py's
// SkillManagerNode.__init__/_initSkills bootstrap sequence (register
// agent, load libraries/skills/primitives, start communications),
// translated off ROS node bootstrapping and onto a plain main plus TOML
// config load. The wire transport those Python services exposed is
// explicitly out of scope, so this binary drives the manager in-process
// instead of serving requests over a network.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"

	"github.com/skiros2/skiros-go/behaviortree/visitor"
	"github.com/skiros2/skiros-go/config"
	"github.com/skiros2/skiros-go/manager"
	"github.com/skiros2/skiros-go/skill"
	"github.com/skiros2/skiros-go/ticker"
	"github.com/skiros2/skiros-go/worldmodel"
	"github.com/skiros2/skiros-go/worldmodel/memory"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := flag.NewFlagSet("skirosd", flag.ContinueOnError)
	configPath := flags.String("config", "", "path to a skiros.toml config file")
	if err := flags.Parse(args); err != nil {
		return 1
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %s\n", err)
		return 1
	}

	level := zerolog.InfoLevel
	if cfg.Verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.NewConsoleWriter()).Level(level).With().Timestamp().Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt)
	defer signal.Stop(signals)
	go func() {
		<-signals
		cancel()
	}()

	wm := memory.New()
	wm.AddTemplate(worldmodel.Element{Type: cfg.RobotType})

	tk := ticker.New(log, visitor.NewExecute(wm))
	mgr := manager.New(wm, tk, log)

	if err := mgr.RegisterAgent(cfg.RobotType, cfg.RobotName); err != nil {
		log.Error().Err(err).Msg("register agent")
		return 1
	}
	if err := loadDemoSkills(mgr, cfg.SkillList); err != nil {
		log.Error().Err(err).Msg("load skills")
		return 1
	}

	taskDone := make(chan struct{}, 1)
	mgr.ObserveProgress(func(ev manager.ProgressEvent) {
		if ev.Type == "Task" {
			select {
			case taskDone <- struct{}{}:
			default:
			}
		}
		log.Info().
			Uint64("task", ev.TaskID).
			Uint64("node", ev.NodeID).
			Str("type", ev.Type).
			Str("label", ev.Label).
			Str("state", ev.State).
			Msg("progress")
	})

	steps := make([]manager.SkillStepRequest, 0, len(cfg.SkillList))
	for i, typ := range cfg.SkillList {
		steps = append(steps, manager.SkillStepRequest{Type: typ, Label: fmt.Sprintf("%s-%d", typ, i)})
	}
	if len(steps) == 0 {
		log.Warn().Msg("no skills configured, nothing to run")
		return 0
	}

	resp := mgr.HandleRequest(ctx, manager.TaskRequest{Action: manager.ActionStart, Steps: steps})
	if !resp.OK {
		log.Error().Str("message", resp.Message).Msg("task failed to start")
		return 1
	}

	select {
	case <-taskDone:
	case <-ctx.Done():
	case <-time.After(30 * time.Second):
		log.Warn().Msg("demo task timed out")
	}
	mgr.ClearTasks()
	return 0
}

// loadDemoSkills registers a pass-through skill factory per configured
// skill type. Dynamic plugin loading (scanning shared libraries for
// skill implementations, as _initSkills' loadSkills does) is explicitly
// out of scope per §1; this is the operator-demo substitute, letting
// skirosd exercise a full task lifecycle without embedding real robot
// primitives.
func loadDemoSkills(mgr *manager.Manager, types []string) error {
	factories := make(map[string]skill.Factory, len(types))
	for _, typ := range types {
		typ := typ
		factories[typ] = func(label string) *skill.Skill {
			return skill.New(typ, label)
		}
	}
	return mgr.LoadSkills(factories)
}
