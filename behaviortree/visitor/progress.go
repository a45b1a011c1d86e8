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
	"github.com/skiros2/skiros-go/skill"
)

// NodeProgress is one entry of a Progress snapshot: (nodeId, {type,
// label, state, msg, code, time}) per spec §4.F. Progress only supplies
// Type, Label, State, NodeID. The ticker sets Msg on its synthetic "Task"
// record only and never sets Code; elapsed time is not stored here but
// passed separately to ticker.ProgressFunc.
type NodeProgress struct {
	NodeID uint64
	Type   string
	Label  string
	State  skill.State
	Msg    string
	Code   int
}

// Progress is a side-effect-free visitor that records one NodeProgress
// per visited node, without altering any node's State. It is used only
// by the ticker to publish per-tick snapshots.
type Progress struct {
	snapshot []NodeProgress
}

var _ Visitor = (*Progress)(nil)

// Traverse records a fresh snapshot of n and its subtree and returns n's
// existing (unmodified) State.
func (p *Progress) Traverse(n *behaviortree.Node) (skill.State, error) {
	p.snapshot = p.snapshot[:0]
	p.walk(n)
	return n.State, nil
}

func (p *Progress) walk(n *behaviortree.Node) {
	p.snapshot = append(p.snapshot, NodeProgress{
		NodeID: n.ID,
		Type:   n.Kind.String(),
		Label:  n.Label,
		State:  n.State,
	})
	for _, c := range n.Children() {
		p.walk(c)
	}
}

// Snapshot returns the most recently recorded per-node progress records.
func (p *Progress) Snapshot() []NodeProgress {
	out := make([]NodeProgress, len(p.snapshot))
	copy(out, p.snapshot)
	return out
}

// Reset clears the recorded snapshot, mirroring BtTicker's
// progress.reset() call before each traverse in skill_manager.py.
func (p *Progress) Reset() {
	p.snapshot = p.snapshot[:0]
}
