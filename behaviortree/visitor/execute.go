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

package visitor

import (
	"fmt"
	"sync"

	"github.com/skiros2/skiros-go/behaviortree"
	"github.com/skiros2/skiros-go/param"
	"github.com/skiros2/skiros-go/skierr"
	"github.com/skiros2/skiros-go/skill"
	"github.com/skiros2/skiros-go/worldmodel"
)

// Execute drives skill leaves through their OnStart/OnStep/OnEnd hooks,
// resolving Inferred parameters from each skill's preconditions before
// OnStart. Preempt() sets an interrupted flag checked at the start of
// every Traverse: the next call short-circuits every node to Failure and
// invokes OnEnd for any node left Running, per spec §4.F.
type Execute struct {
	WM worldmodel.Model

	mu        sync.Mutex
	preempted bool
}

var _ Visitor = (*Execute)(nil)

func NewExecute(wm worldmodel.Model) *Execute {
	return &Execute{WM: wm}
}

// Preempt requests that the next Traverse call abort the task.
func (e *Execute) Preempt() {
	e.mu.Lock()
	e.preempted = true
	e.mu.Unlock()
}

func (e *Execute) isPreempted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.preempted
}

func (e *Execute) clearPreempt() {
	e.mu.Lock()
	e.preempted = false
	e.mu.Unlock()
}

func (e *Execute) Traverse(n *behaviortree.Node) (skill.State, error) {
	if e.isPreempted() {
		e.unwind(n)
		e.clearPreempt()
		return skill.Failure, nil
	}
	return e.traverse(n, n.Params)
}

// unwind walks every node, calling OnEnd for any Running skill leaf and
// forcing every node's State to Failure.
func (e *Execute) unwind(n *behaviortree.Node) {
	for _, c := range n.Children() {
		e.unwind(c)
	}
	if n.Kind == behaviortree.KindSkill && n.State == skill.Running && n.Skill != nil {
		_ = n.Skill.Body.OnEnd(n.Skill.Params)
	}
	n.State = skill.Failure
}

func (e *Execute) traverse(n *behaviortree.Node, ph *param.Handler) (skill.State, error) {
	switch n.Kind {
	case behaviortree.KindSkill:
		return e.processSkill(n)
	case behaviortree.KindRoot:
		return e.processRoot(n, ph)
	case behaviortree.KindSequence:
		return e.processSequence(n, ph)
	case behaviortree.KindSelector:
		return e.processSelector(n, ph)
	case behaviortree.KindParallel:
		return e.processParallel(n, ph)
	case behaviortree.KindDecorator:
		return e.processDecorator(n, ph)
	default:
		return skill.Error, nil
	}
}

func (e *Execute) processRoot(n *behaviortree.Node, ph *param.Handler) (skill.State, error) {
	children := n.Children()
	if len(children) == 0 {
		n.State = skill.Success
		return n.State, nil
	}
	st, err := e.traverse(children[0], ph)
	n.State = st
	return st, err
}

// resetChildren re-initialises every child so the next entry into this
// composite starts from its first child again, matching bt.Memorize's
// restart-on-terminal behavior for Sequence/Selector.
func resetChildren(n *behaviortree.Node) {
	for _, c := range n.Children() {
		c.ResetState()
	}
}

func (e *Execute) processSequence(n *behaviortree.Node, ph *param.Handler) (skill.State, error) {
	for _, c := range n.Children() {
		if c.State == skill.Success {
			// already satisfied this run; resume at the next unresolved child
			continue
		}
		st, err := e.traverse(c, ph)
		if err != nil {
			n.State = skill.Error
			return n.State, err
		}
		if st != skill.Success {
			n.State = st
			if st != skill.Running {
				resetChildren(n)
			}
			return st, nil
		}
	}
	n.State = skill.Success
	resetChildren(n)
	return skill.Success, nil
}

func (e *Execute) processSelector(n *behaviortree.Node, ph *param.Handler) (skill.State, error) {
	for _, c := range n.Children() {
		if c.State == skill.Failure {
			// already ruled out this run; resume at the next candidate
			continue
		}
		st, err := e.traverse(c, ph)
		if err != nil {
			n.State = skill.Error
			return n.State, err
		}
		if st == skill.Success || st == skill.Running {
			n.State = st
			if st == skill.Success {
				resetChildren(n)
			}
			return st, nil
		}
	}
	n.State = skill.Failure
	resetChildren(n)
	return skill.Failure, nil
}

func (e *Execute) processParallel(n *behaviortree.Node, ph *param.Handler) (skill.State, error) {
	children := n.Children()
	states := make([]skill.State, 0, len(children))
	for _, c := range children {
		st, err := e.traverse(c, ph)
		if err != nil {
			n.State = skill.Error
			return n.State, err
		}
		states = append(states, st)
	}
	st := behaviortree.CombineParallel(n.ParallelK, states)
	n.State = st
	return st, nil
}

func (e *Execute) processDecorator(n *behaviortree.Node, ph *param.Handler) (skill.State, error) {
	children := n.Children()
	if len(children) != 1 {
		n.State = skill.Error
		return n.State, nil
	}
	child := children[0]
	switch n.DecoratorKind {
	case behaviortree.Negate:
		st, err := e.traverse(child, ph)
		if err != nil {
			n.State = skill.Error
			return n.State, err
		}
		out, err := behaviortree.CombineNegate(st)
		n.State = out
		return out, err
	case behaviortree.Repeat:
		st, err := e.traverse(child, ph)
		if err != nil {
			n.State = skill.Error
			return n.State, err
		}
		switch st {
		case skill.Success:
			if n.BumpRepeat() >= n.RepeatN {
				n.State = skill.Success
				return skill.Success, nil
			}
			child.ResetState()
			n.State = skill.Running
			return skill.Running, nil
		case skill.Running:
			n.State = skill.Running
			return skill.Running, nil
		default:
			n.State = skill.Failure
			return skill.Failure, nil
		}
	case behaviortree.While:
		ok, err := n.WhileCondition.Evaluate(ph, e.WM)
		if err != nil {
			n.State = skill.Error
			return n.State, err
		}
		if !ok {
			n.State = skill.Failure
			return skill.Failure, nil
		}
		st, err := e.traverse(child, ph)
		if err != nil {
			n.State = skill.Error
			return n.State, err
		}
		n.State = st
		return st, nil
	default:
		n.State = skill.Error
		return n.State, nil
	}
}

func (e *Execute) processSkill(n *behaviortree.Node) (skill.State, error) {
	s := n.Skill
	if n.State != skill.Running {
		for _, c := range s.Preconditions {
			if err := c.SetDesiredState(s.Params); err != nil {
				n.State = skill.Error
				return n.State, err
			}
		}
		for _, c := range s.Preconditions {
			ok, err := c.Evaluate(s.Params, e.WM)
			if err != nil {
				n.State = skill.Error
				return n.State, err
			}
			if !ok {
				n.State = skill.Failure
				return n.State, fmt.Errorf("execute: precondition %q unmet: %w", c.Description(), skierr.ErrPreconditionUnmet)
			}
		}
		if err := s.Body.OnStart(s.Params); err != nil {
			n.State = skill.Error
			return n.State, err
		}
	}
	st, err := s.Body.OnStep(s.Params)
	if err != nil {
		n.State = skill.Error
		return n.State, err
	}
	n.State = st
	if st != skill.Running {
		if err := s.Body.OnEnd(s.Params); err != nil {
			n.State = skill.Error
			return n.State, err
		}
	}
	return st, nil
}
