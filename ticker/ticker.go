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

// Package ticker implements the fixed-rate tick engine: a task registry,
// a preemption queue, and a single background worker that drives a
// pluggable visitor over every registered task 25 times a second,
// publishing progress deltas. Grounded line-for-line on
// original_source/skiros2_skill/ros/skill_manager.py's BtTicker
// (_run/add_task/remove_task/preempt/start/clear/publish_progress/
// observe_progress), translated from a Python threading Process plus
// rospy.Rate into a goroutine paced by golang.org/x/time/rate and
// supervised by golang.org/x/sync/errgroup.
package ticker

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/skiros2/skiros-go/behaviortree"
	"github.com/skiros2/skiros-go/behaviortree/visitor"
	"github.com/skiros2/skiros-go/skill"
)

// Rate is the fixed tick cadence (spec §4.G): 25 Hz.
const Rate = 25

const tickInterval = time.Second / Rate

// Visitor is the subset of behaviortree/visitor.Visitor the ticker drives:
// a Traverse method plus the ability to request preemption of the task
// currently mid-traverse. *visitor.Execute satisfies this.
type Visitor interface {
	Traverse(n *behaviortree.Node) (skill.State, error)
	Preempt()
}

var _ Visitor = (*visitor.Execute)(nil)

// ProgressFunc receives per-tick progress deltas for a task. events holds
// only the nodes whose state changed since the previous tick; elapsed is
// the task's run time so far. On the final tick of a task (state !=
// Running) the observer is called a second time with a single synthetic
// record with Type "Task" and NodeID == uid.
type ProgressFunc func(uid uint64, events []visitor.NodeProgress, terminal bool, elapsed time.Duration)

type taskEntry struct {
	uid      uint64
	root     *behaviortree.Node
	start    time.Time
	last     map[uint64]visitor.NodeProgress
	preempt  bool
}

// Ticker owns the task registry and runs a single worker goroutine that
// ticks every registered task at Rate Hz. All registry state (tasks, the
// preemption set, the uid counter, the observer slot) is guarded by one
// mutex, which is never held across a call into the visitor, the world
// model, or an observer callback, per spec §5.
type Ticker struct {
	log     zerolog.Logger
	visitor Visitor

	mu       sync.Mutex
	tasks    map[uint64]*taskEntry
	order    []uint64
	nextUID  uint64
	observer ProgressFunc

	running bool
	cancel  context.CancelFunc
	group   *errgroup.Group
	done    chan struct{}
}

// New constructs a Ticker that will drive v over every registered task.
func New(log zerolog.Logger, v Visitor) *Ticker {
	return &Ticker{
		log:     log,
		visitor: v,
		tasks:   make(map[uint64]*taskEntry),
	}
}

// AddTask registers root for ticking and returns its uid. desiredUID, if
// non-zero, is used verbatim (the caller is responsible for uniqueness);
// otherwise a fresh uid is allocated.
func (t *Ticker) AddTask(root *behaviortree.Node, desiredUID uint64) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	uid := desiredUID
	if uid == 0 {
		t.nextUID++
		uid = t.nextUID
	} else if uid > t.nextUID {
		t.nextUID = uid
	}
	t.tasks[uid] = &taskEntry{
		uid:   uid,
		root:  root,
		start: time.Now(),
		last:  make(map[uint64]visitor.NodeProgress),
	}
	t.order = append(t.order, uid)
	return uid
}

// Preempt marks uid for preemption on its next tick. Unknown uids are a
// no-op, matching BtTicker.preempt's tolerance of races against task
// completion.
func (t *Ticker) Preempt(uid uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.tasks[uid]; ok {
		e.preempt = true
	}
}

// ObserveProgress installs the callback invoked with each tick's progress
// deltas. Only one observer slot exists; a later call replaces the
// earlier one, mirroring BtTicker.observe_progress's single subscriber.
func (t *Ticker) ObserveProgress(cb ProgressFunc) {
	t.mu.Lock()
	t.observer = cb
	t.mu.Unlock()
}

// Start launches the tick loop if it is not already running. It returns
// false if the ticker was already started, matching BtTicker.start's
// idempotence.
func (t *Ticker) Start(ctx context.Context) bool {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return false
	}
	t.running = true
	runCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	g, gCtx := errgroup.WithContext(runCtx)
	t.group = g
	done := make(chan struct{})
	t.done = done
	t.mu.Unlock()

	g.Go(func() error {
		defer close(done)
		t.run(gCtx)
		return nil
	})
	return true
}

// Clear stops the tick loop and drops every registered task, mirroring
// BtTicker.clear. It blocks until the worker goroutine has exited.
func (t *Ticker) Clear() {
	t.mu.Lock()
	cancel := t.cancel
	done := t.done
	t.running = false
	t.cancel = nil
	t.group = nil
	t.done = nil
	t.tasks = make(map[uint64]*taskEntry)
	t.order = nil
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// run is the worker loop: once per tickInterval, snapshot the set of
// registered uids, tick each task's tree through the visitor, publish
// progress, and remove any task that reached a terminal state.
func (t *Ticker) run(ctx context.Context) {
	limiter := rate.NewLimiter(rate.Limit(Rate), 1)
	for {
		if err := limiter.Wait(ctx); err != nil {
			return
		}
		t.tickOnce()
		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// tickOnce drives a single 25Hz frame across every currently registered
// task. It is split out from run so tests can call it directly without
// waiting on the rate limiter.
func (t *Ticker) tickOnce() {
	t.mu.Lock()
	uids := make([]uint64, len(t.order))
	copy(uids, t.order)
	t.mu.Unlock()

	for _, uid := range uids {
		t.tickTask(uid)
	}
}

func (t *Ticker) tickTask(uid uint64) {
	t.mu.Lock()
	e, ok := t.tasks[uid]
	if !ok {
		t.mu.Unlock()
		return
	}
	preempt := e.preempt
	root := e.root
	start := e.start
	observer := t.observer
	t.mu.Unlock()

	msg := ""
	if preempt {
		t.visitor.Preempt()
		msg = "Preempted."
	}

	st, err := t.visitor.Traverse(root)
	if err != nil {
		t.log.Error().Err(err).Uint64("uid", uid).Msg("task traverse failed")
		st = skill.Error
		msg = err.Error()
	}

	elapsed := time.Since(start)
	terminal := st != skill.Running

	events := t.diffProgress(uid, root)
	if observer != nil {
		observer(uid, events, terminal, elapsed)
		if terminal {
			observer(uid, []visitor.NodeProgress{{
				NodeID: uid,
				Type:   "Task",
				Label:  fmt.Sprintf("task-%d", uid),
				State:  st,
				Msg:    msg,
			}}, terminal, elapsed)
		}
	}

	if terminal {
		t.removeTask(uid)
	}
}

// diffProgress recomputes the progress snapshot for root and returns only
// the entries that changed since the previous tick for this uid,
// mirroring publish_progress's delta-only emission.
func (t *Ticker) diffProgress(uid uint64, root *behaviortree.Node) []visitor.NodeProgress {
	p := &visitor.Progress{}
	_, _ = p.Traverse(root)
	snap := p.Snapshot()

	t.mu.Lock()
	e, ok := t.tasks[uid]
	t.mu.Unlock()
	if !ok {
		return nil
	}

	var delta []visitor.NodeProgress
	seen := make(map[uint64]bool, len(snap))
	for _, np := range snap {
		seen[np.NodeID] = true
		if prev, ok := e.last[np.NodeID]; !ok || prev != np {
			delta = append(delta, np)
		}
	}

	t.mu.Lock()
	if e, ok := t.tasks[uid]; ok {
		next := make(map[uint64]visitor.NodeProgress, len(snap))
		for _, np := range snap {
			next[np.NodeID] = np
		}
		e.last = next
	}
	t.mu.Unlock()

	sort.Slice(delta, func(i, j int) bool { return delta[i].NodeID < delta[j].NodeID })
	return delta
}

func (t *Ticker) removeTask(uid uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.tasks, uid)
	for i, u := range t.order {
		if u == uid {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

// TaskCount returns the number of tasks currently registered, chiefly
// for tests.
func (t *Ticker) TaskCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.tasks)
}

// Wait blocks until the worker goroutine launched by Start has exited and
// returns its error, if any. It returns nil immediately if Start has
// never been called.
func (t *Ticker) Wait() error {
	t.mu.Lock()
	g := t.group
	t.mu.Unlock()
	if g == nil {
		return nil
	}
	return g.Wait()
}
