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

import (
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/skiros2/skiros-go/behaviortree/visitor"
)

// ObserveProgress installs cb as the Progress topic subscriber (spec §6):
// every visitor.NodeProgress delta is stamped with a correlation-unique
// ULID (AS-5) and reshaped into a ProgressEvent.
func (m *Manager) ObserveProgress(cb func(ProgressEvent)) {
	m.ticker.ObserveProgress(func(uid uint64, events []visitor.NodeProgress, _ bool, elapsed time.Duration) {
		for _, e := range events {
			cb(ProgressEvent{
				EventID: ulid.Make().String(),
				TaskID:  uid,
				NodeID:  e.NodeID,
				Type:    e.Type,
				Label:   e.Label,
				State:   e.State.String(),
				Msg:     e.Msg,
				Code:    e.Code,
				Time:    elapsed.Seconds(),
			})
		}
	})
}
