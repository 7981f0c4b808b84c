/*
Copyright © 2026 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

// Package logger provides the dev server's terminal output: a pterm-based
// status line when stdout is a TTY, falling back to plain sequential
// lines otherwise.
package logger

import (
	"os"
	"sync"

	"github.com/pterm/pterm"
	"golang.org/x/term"
)

// Logger is the dev server's narrow logging surface. Background tasks
// (watcher, broadcaster, prebundler) log through it and never panic the
// process on their own account.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	SetStatus(status string)
}

// ptermLogger renders a live status line when attached to a terminal and
// appends plain log lines above it.
type ptermLogger struct {
	mu          sync.Mutex
	interactive bool
	area        *pterm.AreaPrinter
	lines       []string
	status      string
}

// New creates a Logger, detecting whether stdout is a terminal.
func New() Logger {
	return &ptermLogger{
		interactive: term.IsTerminal(int(os.Stdout.Fd())),
		status:      "starting",
	}
}

// Start begins live rendering. No-op when stdout is not a terminal.
func (l *ptermLogger) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.interactive && l.area == nil {
		l.area, _ = pterm.DefaultArea.Start()
		l.renderLocked()
	}
}

// Stop ends live rendering.
func (l *ptermLogger) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.area != nil {
		_, _ = l.area.Stop()
		l.area = nil
	}
}

func (l *ptermLogger) Info(msg string, args ...any) {
	l.log(pterm.FgLightBlue.Sprint("info"), msg, args)
}

func (l *ptermLogger) Warn(msg string, args ...any) {
	l.log(pterm.FgYellow.Sprint("warn"), msg, args)
}

func (l *ptermLogger) Error(msg string, args ...any) {
	l.log(pterm.FgRed.Sprint("error"), msg, args)
}

func (l *ptermLogger) SetStatus(status string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.status = status
	l.renderLocked()
}

func (l *ptermLogger) log(level, msg string, args []any) {
	line := level + " " + msg
	for i := 0; i+1 < len(args); i += 2 {
		line += " " + pterm.FgGray.Sprintf("%v=%v", args[i], args[i+1])
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, line)
	if len(l.lines) > 200 {
		l.lines = l.lines[len(l.lines)-200:]
	}
	if l.interactive {
		l.renderLocked()
	} else {
		pterm.Println(line)
	}
}

func (l *ptermLogger) renderLocked() {
	if !l.interactive || l.area == nil {
		return
	}
	out := ""
	for _, line := range l.lines {
		out += line + "\n"
	}
	out += "\n" + pterm.FgGray.Sprint("──────────────────────────────────────────") + "\n"
	out += pterm.FgLightGreen.Sprint("● ") + l.status
	l.area.Update(out)
}
