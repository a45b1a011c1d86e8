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

// Package skierr defines the error taxonomy shared across the runtime:
// callers match kinds with errors.Is, never by string comparison.
package skierr

import "errors"

var (
	// ErrUnknownParam: caller referenced a key not declared on a Handler.
	ErrUnknownParam = errors.New("skiros: unknown parameter")
	// ErrUnknownSkill: caller referenced a skill type/name not loaded.
	ErrUnknownSkill = errors.New("skiros: unknown skill")
	// ErrUnknownElement: caller referenced a world-model id that doesn't exist.
	ErrUnknownElement = errors.New("skiros: unknown element")
	// ErrPreconditionUnmet: a skill's precondition evaluated false at start.
	ErrPreconditionUnmet = errors.New("skiros: precondition unmet")
	// ErrRpcFailure: world-model or planner transport error.
	ErrRpcFailure = errors.New("skiros: rpc failure")
	// ErrPreempted: task was terminated by Preempt.
	ErrPreempted = errors.New("skiros: preempted")
	// ErrPlannerInfeasible: the planner returned no plan file.
	ErrPlannerInfeasible = errors.New("skiros: planner infeasible")
	// ErrInternalInvariant: a should-never-happen engine invariant broke.
	ErrInternalInvariant = errors.New("skiros: internal invariant violated")
)
