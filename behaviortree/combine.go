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

package behaviortree

import (
	bt "github.com/joeycumines/go-behaviortree"

	"github.com/skiros2/skiros-go/skill"
)

// stateToStatus/statusToState bridge skill.State (our six-valued lifecycle)
// and bt.Status (go-behaviortree's three-valued tick result), only the
// three overlapping values are meaningful on this boundary.
func stateToStatus(s skill.State) bt.Status {
	switch s {
	case skill.Success:
		return bt.Success
	case skill.Failure, skill.Error:
		return bt.Failure
	default:
		return bt.Running
	}
}

func statusToState(st bt.Status) skill.State {
	switch st {
	case bt.Success:
		return skill.Success
	case bt.Failure:
		return skill.Failure
	default:
		return skill.Running
	}
}

// childTick wraps a single already-computed child state as a one-shot
// bt.Node, so go-behaviortree's combinators can be driven without
// re-entering our own tree.
func childTick(s skill.State) bt.Node {
	return bt.New(func([]bt.Node) (bt.Status, error) { return stateToStatus(s), nil })
}

// CombineSequence implements the Sequence composition rule (Success when
// all children Success, Failure on first Failure, Running if any
// Running) by delegating to github.com/joeycumines/go-behaviortree's
// bt.Sequence tick (DS-1).
func CombineSequence(childStates []skill.State) (skill.State, error) {
	children := make([]bt.Node, len(childStates))
	for i, s := range childStates {
		children[i] = childTick(s)
	}
	status, err := bt.Sequence(children)
	return statusToState(status), err
}

// CombineSelector implements the Selector composition rule (Success on
// first Success, Failure when all Failure, Running if any Running), via
// bt.Selector.
func CombineSelector(childStates []skill.State) (skill.State, error) {
	children := make([]bt.Node, len(childStates))
	for i, s := range childStates {
		children[i] = childTick(s)
	}
	status, err := bt.Selector(children)
	return statusToState(status), err
}

// CombineParallel implements Parallel(k): Success once k children have
// Succeeded, Failure once n-k+1 have Failed, else Running. Not present in
// go-behaviortree's combinator set, so this counts directly per spec
// §4.E.
func CombineParallel(k int, childStates []skill.State) skill.State {
	n := len(childStates)
	var succeeded, failed int
	for _, s := range childStates {
		switch s {
		case skill.Success:
			succeeded++
		case skill.Failure, skill.Error:
			failed++
		}
	}
	if succeeded >= k {
		return skill.Success
	}
	if failed >= n-k+1 {
		return skill.Failure
	}
	return skill.Running
}

// CombineNegate implements Decorator(Negate) via bt.Not, which flips
// Success/Failure and passes Running through unchanged.
func CombineNegate(childState skill.State) (skill.State, error) {
	tick, children := childTick(childState)()
	status, err := bt.Not(tick)(children)
	return statusToState(status), err
}
