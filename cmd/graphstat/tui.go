// Copyright 2024 The Tessera authors. All Rights Reserved.
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

package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"k8s.io/klog/v2"
)

// hostUI renders stats - the already-completed result of one ingest.Build
// run - as a static dashboard, grounded on hammer/tui.go's grid/statusView/
// logView layout. Unlike hammer's TUI, which polls a live, still-running
// load generator every tick, graphstat has nothing left to poll by the time
// it's called - Build has already returned - so the status pane is filled
// once and the dashboard simply stays up until the operator quits.
func hostUI(ctx context.Context, stats buildStats) {
	grid := tview.NewGrid()
	grid.SetRows(6, 0, 3).SetColumns(0).SetBorders(true)

	statusView := tview.NewTextView()
	statusView.SetText(stats.String())
	grid.AddItem(statusView, 0, 0, 1, 1, 0, 0, false)

	logView := tview.NewTextView()
	logView.ScrollToEnd()
	logView.SetMaxLines(10000)
	grid.AddItem(logView, 1, 0, 1, 1, 0, 0, false)
	if err := flag.Set("logtostderr", "false"); err != nil {
		klog.Exitf("Failed to set flag: %v", err)
	}
	if err := flag.Set("alsologtostderr", "false"); err != nil {
		klog.Exitf("Failed to set flag: %v", err)
	}
	klog.SetOutput(logView)

	helpView := tview.NewTextView()
	helpView.SetText("q to quit")
	grid.AddItem(helpView, 2, 0, 1, 1, 0, 0, false)

	app := tview.NewApplication()
	app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Rune() {
		case 'q':
			app.Stop()
			return nil
		}
		return event
	})
	klog.Infof("graphstat: %s", fmt.Sprintf("%s built, showing dashboard", stats.String()))
	if err := app.SetRoot(grid, true).Run(); err != nil {
		klog.Exitf("tui: %v", err)
	}
}
