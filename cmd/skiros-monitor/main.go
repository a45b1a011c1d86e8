// Copyright 2021 Joseph Cumines
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command skiros-monitor is a terminal viewer for the Progress topic
// (spec §6/DS-5): it renders one row per (task, node) pair, colored by
// the node's last reported skill.State, refreshed as ProgressEvents
// arrive. Adapted from the teacher's own tcell-pick-and-place example's
// screen init/teardown and signal handling, rewritten around
// manager.Manager's ProgressEvent stream instead of a 2D sprite
// simulation.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"github.com/skiros2/skiros-go/behaviortree/visitor"
	"github.com/skiros2/skiros-go/manager"
	"github.com/skiros2/skiros-go/ticker"
	"github.com/skiros2/skiros-go/worldmodel/memory"
)

func main() {
	os.Exit(run())
}

func run() int {
	log := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger()

	screen, err := tcell.NewScreen()
	if err == nil {
		err = screen.Init()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "screen init error: %s\n", err)
		return 1
	}
	defer screen.Fini()
	screen.SetStyle(tcell.StyleDefault)
	screen.Clear()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt)
	defer signal.Stop(signals)
	go func() {
		<-signals
		cancel()
	}()

	wm := memory.New()
	tk := ticker.New(log, visitor.NewExecute(wm))
	mgr := manager.New(wm, tk, log)

	v := newView()
	mgr.ObserveProgress(v.handle)

	keyChan := make(chan *tcell.EventKey)
	resizeChan := make(chan *tcell.EventResize)
	go pollEvents(ctx, screen.PollEvent, keyChan, resizeChan)

	tk.Start(ctx)
	defer tk.Clear()

	v.draw(screen)
	screen.Show()

	for {
		select {
		case <-ctx.Done():
			return 0
		case e := <-keyChan:
			if e.Key() == tcell.KeyCtrlC || e.Key() == tcell.KeyEscape || e.Rune() == 'q' {
				cancel()
				continue
			}
			v.draw(screen)
			screen.Show()
		case <-resizeChan:
			screen.Sync()
			v.draw(screen)
			screen.Show()
		}
	}
}

// pollEvents relays screen's blocking PollEvent loop onto typed channels,
// the same split sim.eventLoop uses to hand tcell.EventKey/EventResize to
// a select-driven consumer without blocking the poll goroutine on a
// full consumer.
func pollEvents(
	ctx context.Context,
	poll func() tcell.Event,
	keyChan chan<- *tcell.EventKey,
	resizeChan chan<- *tcell.EventResize,
) {
	for {
		if ctx.Err() != nil {
			return
		}
		event := poll()
		if event == nil {
			return
		}
		switch event := event.(type) {
		case *tcell.EventKey:
			select {
			case <-ctx.Done():
				return
			case keyChan <- event:
			}
		case *tcell.EventResize:
			select {
			case <-ctx.Done():
				return
			case resizeChan <- event:
			}
		}
	}
}

// rowKey identifies one monitored tree node across repeated progress
// events.
type rowKey struct {
	taskID uint64
	nodeID uint64
}

// view accumulates the latest ProgressEvent per (task, node) under a
// mutex, snapshot-under-lock the same way sim.state.State() produces a
// detached State for rendering.
type view struct {
	mu   sync.RWMutex
	rows map[rowKey]manager.ProgressEvent
}

func newView() *view {
	return &view{rows: make(map[rowKey]manager.ProgressEvent)}
}

func (v *view) handle(ev manager.ProgressEvent) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.rows[rowKey{ev.TaskID, ev.NodeID}] = ev
}

func (v *view) snapshot() []manager.ProgressEvent {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]manager.ProgressEvent, 0, len(v.rows))
	for _, ev := range v.rows {
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TaskID != out[j].TaskID {
			return out[i].TaskID < out[j].TaskID
		}
		return out[i].NodeID < out[j].NodeID
	})
	return out
}

func (v *view) draw(screen tcell.Screen) {
	screen.Clear()
	drawText(screen, 0, 0, tcell.StyleDefault.Bold(true), "task  node  type       label                 state     msg")
	for i, ev := range v.snapshot() {
		line := fmt.Sprintf("%-5d %-5d %-10s %-21s %-9s %s", ev.TaskID, ev.NodeID, ev.Type, ev.Label, ev.State, ev.Msg)
		drawText(screen, 0, i+1, styleForState(ev.State), line)
	}
}

func styleForState(state string) tcell.Style {
	style := tcell.StyleDefault
	switch state {
	case "Success":
		return style.Foreground(tcell.ColorGreen)
	case "Failure", "Error":
		return style.Foreground(tcell.ColorRed)
	case "Running":
		return style.Foreground(tcell.ColorYellow)
	default:
		return style
	}
}

func drawText(screen tcell.Screen, x, y int, style tcell.Style, text string) {
	for i, r := range text {
		screen.SetContent(x+i, y, r, nil, style)
	}
}
