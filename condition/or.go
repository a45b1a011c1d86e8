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

package condition

import (
	"strings"

	"github.com/skiros2/skiros-go/param"
	"github.com/skiros2/skiros-go/worldmodel"
)

// Or is a disjunction over a set of sub-conditions: it evaluates true if
// any child evaluates true, grounded on ConditionOr (conditions.py lines
// 88-163). SetTrue tries each child in order and stops at the first one
// that succeeds, so Revert only needs to undo that one child.
type Or struct {
	Label      string
	Conditions []Condition

	lastTrue int
}

var _ Condition = (*Or)(nil)

func NewOr(label string, conditions ...Condition) *Or {
	return &Or{Label: label, Conditions: conditions, lastTrue: -1}
}

func (c *Or) Keys() []string {
	seen := make(map[string]bool)
	var keys []string
	for _, sub := range c.Conditions {
		for _, k := range sub.Keys() {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	return keys
}

func (c *Or) Description() string {
	parts := make([]string, 0, len(c.Conditions))
	for _, sub := range c.Conditions {
		parts = append(parts, sub.Description())
	}
	return "[" + c.Label + "] (" + strings.Join(parts, " or ") + ")"
}

func (c *Or) Remap(oldKey, newKey string) {
	for _, sub := range c.Conditions {
		sub.Remap(oldKey, newKey)
	}
}

func (c *Or) Evaluate(ph *param.Handler, wm worldmodel.Model) (bool, error) {
	var firstErr error
	for _, sub := range c.Conditions {
		ok, err := sub.Evaluate(ph, wm)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if ok {
			return true, nil
		}
	}
	if firstErr != nil {
		return false, firstErr
	}
	return false, nil
}

// orSnapshot records which child produced the snapshot so Revert can
// route back to the same one.
type orSnapshot struct {
	index int
	inner *Snapshot
}

func (c *Or) SetTrue(ph *param.Handler, wm worldmodel.Model) (*Snapshot, bool, error) {
	for _, sub := range c.Conditions {
		ok, err := sub.Evaluate(ph, wm)
		if err == nil && ok {
			return nil, true, nil
		}
	}
	for i, sub := range c.Conditions {
		inner, ok, err := sub.SetTrue(ph, wm)
		if err != nil {
			return nil, false, err
		}
		if ok {
			c.lastTrue = i
			return &Snapshot{or: &orSnapshot{index: i, inner: inner}}, true, nil
		}
	}
	return nil, false, nil
}

func (c *Or) Revert(ph *param.Handler, wm worldmodel.Model, snap *Snapshot) (bool, error) {
	if snap == nil || snap.or == nil {
		return false, nil
	}
	if snap.or.index < 0 || snap.or.index >= len(c.Conditions) {
		return false, nil
	}
	return c.Conditions[snap.or.index].Revert(ph, wm, snap.or.inner)
}

func (c *Or) SetDesiredState(ph *param.Handler) error {
	if len(c.Conditions) == 0 {
		return nil
	}
	return c.Conditions[0].SetDesiredState(ph)
}

func (c *Or) ToElement() worldmodel.Element {
	e := worldmodel.Element{Type: "skiros:Or", Label: c.Label}
	return e
}

func (c *Or) IsEqual(other Condition) bool {
	o, ok := other.(*Or)
	if !ok || len(c.Conditions) != len(o.Conditions) {
		return false
	}
	for i := range c.Conditions {
		if !c.Conditions[i].IsEqual(o.Conditions[i]) {
			return false
		}
	}
	return true
}

func (c *Or) HasConflict(other Condition) bool {
	o, ok := other.(*Or)
	if !ok {
		return false
	}
	for _, a := range c.Conditions {
		for _, b := range o.Conditions {
			if a.HasConflict(b) {
				return true
			}
		}
	}
	return false
}
