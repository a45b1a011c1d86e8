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

package pddl

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/skiros2/skiros-go/skierr"
)

// Compiler manages a PDDL domain/problem under construction and drives
// the external planner subprocess, grounded on PddlInterface.
type Compiler struct {
	title         string
	workspace     string
	plannerBinary string
	log           zerolog.Logger

	types      *Types
	objects    map[string][]string
	functions  []*Predicate
	predicates []*Predicate
	actions    []*Action
	initState  []*GroundPredicate
	goal       []*GroundPredicate
}

// NewCompiler constructs a Compiler that will write its domain/problem
// files under workspace and invoke plannerBinary to solve them.
func NewCompiler(workspace, title, plannerBinary string, log zerolog.Logger) *Compiler {
	c := &Compiler{
		title:         title,
		workspace:     workspace,
		plannerBinary: plannerBinary,
		log:           log,
	}
	c.Clear()
	return c
}

// NewWorkspace creates a fresh, uniquely-named planning session directory
// under root (AS-5: github.com/google/uuid), so concurrent planning runs
// never collide over domain.pddl/p01.pddl.
func NewWorkspace(root string) (string, error) {
	dir := filepath.Join(root, uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("pddl: create workspace: %w", err)
	}
	return dir, nil
}

// Clear resets the compiler to an empty domain/problem, matching
// PddlInterface.clear.
func (c *Compiler) Clear() {
	c.types = NewTypes()
	c.objects = make(map[string][]string)
	c.functions = nil
	c.predicates = nil
	c.actions = nil
	c.initState = nil
	c.goal = nil
}

// addSuperTypes handles a name collision between an already-registered
// predicate/function and a newly-offered one with a different parameter
// valueType: it synthesizes a fresh supertype (name+paramType) covering
// both concrete types and rewrites the stored predicate's param in
// place, exactly as _addSuperTypes does.
func (c *Compiler) addSuperTypes(predicate *Predicate) {
	lookup := c.predicates
	if predicate.IsFunction() {
		lookup = c.functions
	}
	for _, p := range lookup {
		if !p.Equal(predicate) {
			continue
		}
		n := len(p.Params)
		if len(predicate.Params) < n {
			n = len(predicate.Params)
		}
		for i := 0; i < n; i++ {
			param1, param2 := &p.Params[i], &predicate.Params[i]
			if param1.ValueType != param2.ValueType {
				supertypeID := p.Name + param1.ParamType
				c.types.AddType(param1.ValueType, supertypeID)
				c.types.AddType(param2.ValueType, supertypeID)
				param1.ValueType = supertypeID
			}
		}
		return
	}
}

// AddType records a type/supertype relationship in the domain's (:types).
func (c *Compiler) AddType(name, supertype string) {
	c.types.AddType(name, supertype)
}

// AddUngroundPredicate registers a predicate used by some action's
// preconditions/effects, routing numeric fluents to AddFunction.
func (c *Compiler) AddUngroundPredicate(p *Predicate) {
	if p.IsFunction() {
		c.AddFunction(p)
		return
	}
	for _, existing := range c.predicates {
		if existing.Equal(p) {
			c.addSuperTypes(p)
			return
		}
	}
	c.predicates = append(c.predicates, p)
}

// AddFunction registers a numeric fluent used by some action.
func (c *Compiler) AddFunction(f *Predicate) {
	for _, existing := range c.functions {
		if existing.Equal(f) {
			c.addSuperTypes(f)
			return
		}
	}
	c.functions = append(c.functions, f)
}

// AddAction registers a durative-action, skipping actions with no
// preconditions or no effects (an action that can't change anything
// can't usefully appear in a plan), matching addAction's guard.
func (c *Compiler) AddAction(a *Action) {
	if len(a.Preconditions) == 0 || len(a.Effects) == 0 {
		return
	}
	for _, existing := range c.actions {
		if existing.Equal(a) {
			return
		}
	}
	for _, key := range a.ParamOrder {
		c.AddType(a.Params[key], "thing")
	}
	for _, p := range a.Preconditions {
		c.AddUngroundPredicate(p)
	}
	for _, e := range a.Effects {
		c.AddUngroundPredicate(e)
	}
	c.actions = append(c.actions, a)
}

// SetObjects sets the problem's (:objects ...) block, keyed by type.
func (c *Compiler) SetObjects(objects map[string][]string) { c.objects = objects }

// SetInitState sets the problem's (:init ...) block.
func (c *Compiler) SetInitState(init []*GroundPredicate) { c.initState = init }

// AddGoal appends a goal conjunct to the problem's (:goal (and ...)).
func (c *Compiler) AddGoal(g *GroundPredicate) { c.goal = append(c.goal, g) }

// PrintDomain renders the full PDDL domain definition.
func (c *Compiler) PrintDomain() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("(define (domain %s)\n", c.title))
	b.WriteString("(:requirements :typing :fluents :universal-preconditions)\n")
	b.WriteString(c.types.ToPDDL())
	b.WriteString("\n")
	b.WriteString("(:predicates \n")
	for _, p := range c.predicates {
		b.WriteString("\t")
		b.WriteString(p.ToUngroundPDDL())
		b.WriteString("\n")
	}
	b.WriteString(")\n")
	b.WriteString("(:functions \n")
	for _, f := range c.functions {
		b.WriteString(fmt.Sprintf("\t%s\n", f.ToUngroundPDDL()))
	}
	b.WriteString(")\n")
	for _, a := range c.actions {
		b.WriteString(a.ToPDDL())
		b.WriteString("\n")
	}
	b.WriteString(")\n")
	return b.String()
}

// PrintProblem renders the full PDDL problem definition.
func (c *Compiler) PrintProblem() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("(define (problem %s) (:domain %s)\n", "1", c.title))
	b.WriteString("(:objects \n")
	types := make([]string, 0, len(c.objects))
	for t := range c.objects {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		objects := c.objects[t]
		if len(objects) == 0 {
			continue
		}
		b.WriteString("\t")
		b.WriteString(strings.Join(objects, " "))
		b.WriteString(fmt.Sprintf(" - %s\n", t))
	}
	b.WriteString(")\n")
	b.WriteString("(:init \n")
	for _, state := range c.initState {
		b.WriteString("\t")
		b.WriteString(state.ToPDDL())
		b.WriteString("\n")
	}
	b.WriteString(")\n")
	b.WriteString("(:goal (and \n")
	for _, g := range c.goal {
		b.WriteString("\t")
		b.WriteString(g.ToPDDL())
		b.WriteString("\n")
	}
	b.WriteString("))\n")
	b.WriteString(")\n")
	return b.String()
}

const (
	domainFileName  = "domain.pddl"
	problemFileName = "p01.pddl"
	// plannerSearchFlags mirrors the LAMA-style search string
	// pddl_interface.py hardcodes when invoking plan.py.
	plannerSearchFlags = "y+Y+a+T+10+t+5+e+r+O+1+C+1"
)

// byproductFiles are artifacts the planner leaves behind that
// invokePlanner cleans up after reading the plan, matching the
// remove("output")/remove("all.groups")/... calls in pddl_interface.py.
var byproductFiles = []string{"output", "all.groups", "variables.groups", "output.sas"}

// InvokePlanner writes the domain/problem PDDL (unless generatePDDL is
// false) and shells out to the configured planner binary, returning its
// plan text. It returns skierr.ErrPlannerInfeasible if no plan file
// ("pddlplan") appears in the workspace afterwards.
func (c *Compiler) InvokePlanner(ctx context.Context, generatePDDL bool) (string, error) {
	domainPath := filepath.Join(c.workspace, domainFileName)
	problemPath := filepath.Join(c.workspace, problemFileName)
	planPath := filepath.Join(c.workspace, "pddlplan")

	if generatePDDL {
		if err := os.WriteFile(domainPath, []byte(c.PrintDomain()), 0o644); err != nil {
			return "", fmt.Errorf("pddl: write domain: %w", err)
		}
		if err := os.WriteFile(problemPath, []byte(c.PrintProblem()), 0o644); err != nil {
			return "", fmt.Errorf("pddl: write problem: %w", err)
		}
	}

	cmd := exec.CommandContext(ctx, c.plannerBinary, plannerSearchFlags, domainPath, problemPath, planPath)
	cmd.Dir = c.workspace
	out, err := cmd.Output()
	if err != nil {
		c.log.Error().Err(err).Str("planner", c.plannerBinary).Bytes("output", out).Msg("planner invocation failed")
		return "", fmt.Errorf("pddl: invoke planner: %w", err)
	}

	outPath, err := findPlanFile(c.workspace)
	if err != nil {
		return "", err
	}
	if outPath == "" {
		c.log.Warn().Str("workspace", c.workspace).Msg("planner produced no plan file")
		return "", skierr.ErrPlannerInfeasible
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		return "", fmt.Errorf("pddl: read plan: %w", err)
	}

	c.cleanupByproducts(outPath)
	return string(data), nil
}

// findPlanFile walks the workspace for a file whose name contains
// "pddlplan", matching invokePlanner's os.walk scan (the planner
// sometimes suffixes the requested plan path, e.g. "pddlplan.1").
func findPlanFile(workspace string) (string, error) {
	entries, err := os.ReadDir(workspace)
	if err != nil {
		return "", fmt.Errorf("pddl: scan workspace: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.Contains(e.Name(), "pddlplan") {
			return filepath.Join(workspace, e.Name()), nil
		}
	}
	return "", nil
}

func (c *Compiler) cleanupByproducts(planPath string) {
	for _, name := range byproductFiles {
		if err := os.Remove(filepath.Join(c.workspace, name)); err != nil && !os.IsNotExist(err) {
			c.log.Debug().Err(err).Str("file", name).Msg("byproduct cleanup failed")
		}
	}
	if err := os.Remove(planPath); err != nil && !os.IsNotExist(err) {
		c.log.Debug().Err(err).Str("file", planPath).Msg("plan file cleanup failed")
	}
}
