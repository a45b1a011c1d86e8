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

package manager

// Action names a TaskRequest's requested operation, mirroring the
// task_manager_interface.py/skill_manager.py call surface (add_task,
// executeTask, simulateTask, printTask, preemptTask) reshaped into a
// single wire-addressable verb per spec §6.
type Action string

const (
	ActionStart    Action = "start"
	ActionPreempt  Action = "preempt"
	ActionPause    Action = "pause"
	ActionKill     Action = "kill"
	ActionPrint    Action = "print"
	ActionSimulate Action = "simulate"
)

// SkillStepRequest is one parameterised skill invocation within a task,
// the wire shape of what skill_manager.py's add_task builds a
// SkillWrapper from.
type SkillStepRequest struct {
	Type   string         `json:"type"`
	Label  string         `json:"label"`
	Params map[string]any `json:"params,omitempty"`
}

// TaskRequest is the Task submission API body (spec §6).
type TaskRequest struct {
	Action Action             `json:"action"`
	TaskID uint64             `json:"task_id,omitempty"`
	Steps  []SkillStepRequest `json:"steps,omitempty"`
}

// TaskResponse is the Task submission API's reply. Pause/Kill are
// reserved actions (Open Question 2): they always return OK=false.
type TaskResponse struct {
	OK      bool   `json:"ok"`
	TaskID  uint64 `json:"task_id,omitempty"`
	Message string `json:"message,omitempty"`
	// Plan carries rendered tree text for Print, or is empty otherwise.
	Plan string `json:"plan,omitempty"`
}

// ParamDescription is one entry of a SkillDescription's parameter list.
type ParamDescription struct {
	Key       string `json:"key"`
	Type      string `json:"type"`
	ValueType string `json:"value_type,omitempty"`
}

// SkillDescription is the Skill-description API's reply shape, the wire
// form of a *skill.Skill published via Manager.AddSkill.
type SkillDescription struct {
	Type   string             `json:"type"`
	Label  string             `json:"label"`
	Params []ParamDescription `json:"params"`
}

// ProgressEvent is one entry of the Progress topic: a single NodeProgress
// record correlated to its task, timestamped and ID'd for downstream
// consumers that can't rely on delivery order (AS-5's ULID EventID).
type ProgressEvent struct {
	EventID string  `json:"event_id"`
	TaskID  uint64  `json:"task_id"`
	NodeID  uint64  `json:"node_id"`
	Type    string  `json:"type"`
	Label   string  `json:"label"`
	State   string  `json:"state"`
	Msg     string  `json:"msg,omitempty"`
	Code    int     `json:"code"`
	Time    float64 `json:"time"`
}
