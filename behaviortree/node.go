/*
   Copyright 2021 Joseph Cumines

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

// Package behaviortree defines the composite node types a task's tree is
// assembled from: Root, Sequence, Selector, Parallel(k), Decorator, and
// SkillWrapper. The sibling-list ownership (append/delete, first/last/
// prev/next) is grounded on go-pabt's internal node struct in util.go;
// the composition algorithms in combine.go reuse
// github.com/joeycumines/go-behaviortree's Sequence/Selector/Not ticks.
package behaviortree

import (
	"fmt"
	"sync/atomic"

	"github.com/skiros2/skiros-go/condition"
	"github.com/skiros2/skiros-go/param"
	"github.com/skiros2/skiros-go/skill"
)

var nodeIDCounter uint64

func nextNodeID() uint64 { return atomic.AddUint64(&nodeIDCounter, 1) }

// Kind discriminates the BehaviorTreeNode sum type.
type Kind int

const (
	KindRoot Kind = iota
	KindSequence
	KindSelector
	KindParallel
	KindDecorator
	KindSkill
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "Root"
	case KindSequence:
		return "Sequence"
	case KindSelector:
		return "Selector"
	case KindParallel:
		return "Parallel"
	case KindDecorator:
		return "Decorator"
	case KindSkill:
		return "Skill"
	default:
		return "Unknown"
	}
}

// DecoratorKind discriminates the Decorator variants.
type DecoratorKind int

const (
	Negate DecoratorKind = iota
	Repeat
	While
)

func (d DecoratorKind) String() string {
	switch d {
	case Negate:
		return "Negate"
	case Repeat:
		return "Repeat"
	case While:
		return "While"
	default:
		return "Unknown"
	}
}

// Node is one BehaviorTreeNode. Ownership is exclusive: a Node never
// appears under two parents (Append always unlinks the child first, as
// in go-pabt's node.append/node.delete).
type Node struct {
	// ID is a process-unique identifier assigned at construction, used by
	// the Progress visitor to key per-node snapshots.
	ID uint64

	Kind          Kind
	DecoratorKind DecoratorKind
	Label         string

	// Skill is set only for KindSkill leaves.
	Skill *skill.Skill

	// Params is non-nil for Root (the tree's shared handler) and for
	// KindSkill leaves (the skill's own handler); composite nodes above a
	// skill normally carry no handler of their own.
	Params *param.Handler

	// State is the node's last-computed lifecycle state; set exclusively
	// by a visitor's traverse, never read by Node methods themselves.
	State skill.State

	// ParallelK is the success threshold for KindParallel.
	ParallelK int

	// RepeatN is the target repeat count for Decorator(Repeat); ignored
	// otherwise. WhileCondition guards Decorator(While); ignored
	// otherwise.
	RepeatN        int
	WhileCondition condition.Condition

	// repeatCount counts the child successes seen so far by a
	// Decorator(Repeat), mutated only by the Execute visitor; it is never
	// reset, not even after a child failure.
	repeatCount int

	parent, first, last, prev, next *Node
}

// NewRoot wraps child as the tree's root, carrying ph as the shared
// ParamHandler referenced by every descendant condition/skill (spec §4.E).
func NewRoot(label string, ph *param.Handler, child *Node) *Node {
	n := &Node{ID: nextNodeID(), Kind: KindRoot, Label: label, Params: ph}
	if child != nil {
		n.Append(nil, child)
	}
	return n
}

func NewSequence(label string, children ...*Node) *Node {
	n := &Node{ID: nextNodeID(), Kind: KindSequence, Label: label}
	n.Append(nil, children...)
	return n
}

func NewSelector(label string, children ...*Node) *Node {
	n := &Node{ID: nextNodeID(), Kind: KindSelector, Label: label}
	n.Append(nil, children...)
	return n
}

func NewParallel(label string, k int, children ...*Node) *Node {
	n := &Node{ID: nextNodeID(), Kind: KindParallel, Label: label, ParallelK: k}
	n.Append(nil, children...)
	return n
}

func NewDecoratorNegate(label string, child *Node) *Node {
	n := &Node{ID: nextNodeID(), Kind: KindDecorator, DecoratorKind: Negate, Label: label}
	n.Append(nil, child)
	return n
}

func NewDecoratorRepeat(label string, count int, child *Node) *Node {
	n := &Node{ID: nextNodeID(), Kind: KindDecorator, DecoratorKind: Repeat, Label: label, RepeatN: count}
	n.Append(nil, child)
	return n
}

func NewDecoratorWhile(label string, cond condition.Condition, child *Node) *Node {
	n := &Node{ID: nextNodeID(), Kind: KindDecorator, DecoratorKind: While, Label: label, WhileCondition: cond}
	n.Append(nil, child)
	return n
}

func NewSkillWrapper(s *skill.Skill) *Node {
	return &Node{ID: nextNodeID(), Kind: KindSkill, Label: s.Label, Skill: s, Params: s.Params}
}

// Parent returns the owning node, or nil for a root.
func (n *Node) Parent() *Node { return n.parent }

// ResetState re-initialises n so it will be (re-)started on the next
// traversal; used by Decorator(Repeat) to re-enter its child.
func (n *Node) ResetState() { n.State = skill.Initialised }

// BumpRepeat increments the Decorator(Repeat) success counter and returns
// the new count.
func (n *Node) BumpRepeat() int {
	n.repeatCount++
	return n.repeatCount
}

// RepeatCount returns the Decorator(Repeat) success counter.
func (n *Node) RepeatCount() int { return n.repeatCount }

// Children returns the ordered child slice (left to right).
func (n *Node) Children() []*Node {
	var out []*Node
	for c := n.first; c != nil; c = c.next {
		out = append(out, c)
	}
	return out
}

// Append unlinks each of children (wherever currently owned) and relinks
// it into n's sibling list immediately before next, or at the end when
// next is nil. Grounded on go-pabt util.go's node.append.
func (n *Node) Append(next *Node, children ...*Node) {
	if n.Kind == KindSkill {
		panic(fmt.Errorf("behaviortree: cannot append children to a skill leaf"))
	}
	for _, child := range children {
		child.Delete()
		var prev *Node
		if next != nil {
			prev = next.prev
		} else {
			prev = n.last
		}
		child.parent = n
		if next != nil {
			child.next = next
			next.prev = child
		} else {
			n.last = child
		}
		if prev != nil {
			child.prev = prev
			prev.next = child
		} else {
			n.first = child
		}
	}
}

// Delete unlinks n from its current parent/siblings, if any. Grounded on
// go-pabt util.go's node.delete.
func (n *Node) Delete() {
	var (
		prev   = n.prev
		next   = n.next
		parent = n.parent
	)
	if prev != nil {
		prev.next = next
	}
	if next != nil {
		next.prev = prev
	}
	if parent != nil {
		if parent.first == n {
			parent.first = next
		}
		if parent.last == n {
			parent.last = prev
		}
	}
	n.prev = nil
	n.next = nil
	n.parent = nil
}

// Remap rewrites oldKey to newKey across this node's own Params (if any),
// its Skill's conditions (if a skill leaf), its WhileCondition (if a
// While decorator), and recursively across every descendant - the
// assembly-time keyspace fold described in spec §4.E.
func (n *Node) Remap(oldKey, newKey string) error {
	if n.Params != nil && n.Params.HasParam(oldKey) {
		if err := n.Params.Remap(oldKey, newKey); err != nil {
			return err
		}
	}
	if n.Kind == KindSkill && n.Skill != nil {
		if err := n.Skill.Remap(oldKey, newKey); err != nil {
			return err
		}
	}
	if n.Kind == KindDecorator && n.DecoratorKind == While && n.WhileCondition != nil {
		n.WhileCondition.Remap(oldKey, newKey)
	}
	for c := n.first; c != nil; c = c.next {
		if err := c.Remap(oldKey, newKey); err != nil {
			return err
		}
	}
	return nil
}
