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
	"github.com/skiros2/skiros-go/behaviortree"
	"github.com/skiros2/skiros-go/condition"
	"github.com/skiros2/skiros-go/param"
	"github.com/skiros2/skiros-go/skill"
	"github.com/skiros2/skiros-go/worldmodel"
)

// ReversibleSimulator (aka Simulate) walks the tree calling SetTrue on
// every precondition then every postcondition of each skill leaf
// encountered, then reverts everything in reverse application order. The
// invariant (spec §4.F/§8) is that the world model and every skill's
// ParamHandler are byte-equal to their pre-simulation snapshots once
// Traverse returns.
type ReversibleSimulator struct {
	WM worldmodel.Model
}

var _ Visitor = (*ReversibleSimulator)(nil)

func NewReversibleSimulator(wm worldmodel.Model) *ReversibleSimulator {
	return &ReversibleSimulator{WM: wm}
}

type appliedCondition struct {
	cond condition.Condition
	ph   *param.Handler
	snap *condition.Snapshot
}

func (v *ReversibleSimulator) Traverse(n *behaviortree.Node) (skill.State, error) {
	var applied []appliedCondition
	err := v.walk(n, &applied)
	for i := len(applied) - 1; i >= 0; i-- {
		a := applied[i]
		if _, rerr := a.cond.Revert(a.ph, v.WM, a.snap); rerr != nil && err == nil {
			err = rerr
		}
	}
	if err != nil {
		n.State = skill.Error
		return n.State, err
	}
	n.State = skill.Success
	return skill.Success, nil
}

func (v *ReversibleSimulator) walk(n *behaviortree.Node, applied *[]appliedCondition) error {
	if n.Kind == behaviortree.KindSkill && n.Skill != nil {
		s := n.Skill
		for _, c := range s.Preconditions {
			snap, ok, err := c.SetTrue(s.Params, v.WM)
			if err != nil {
				return err
			}
			if ok {
				*applied = append(*applied, appliedCondition{cond: c, ph: s.Params, snap: snap})
			}
		}
		for _, c := range s.Postconditions {
			snap, ok, err := c.SetTrue(s.Params, v.WM)
			if err != nil {
				return err
			}
			if ok {
				*applied = append(*applied, appliedCondition{cond: c, ph: s.Params, snap: snap})
			}
		}
	}
	for _, c := range n.Children() {
		if err := v.walk(c, applied); err != nil {
			return err
		}
	}
	return nil
}
