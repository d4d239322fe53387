package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// terminalAlerter prints blocking alerts to the terminal.
type terminalAlerter struct {
	mu       sync.Mutex
	out      io.Writer
	colorize bool
}

func newTerminalAlerter(out io.Writer, colorize bool) *terminalAlerter {
	return &terminalAlerter{out: out, colorize: colorize}
}

func (a *terminalAlerter) Alert(_ context.Context, message string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	printStatus(a.out, statusError, a.colorize, "! %s", message)
}

// linePrompter reads one line of input per prompt. End of input cancels.
type linePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newLinePrompter(in io.Reader, out io.Writer) *linePrompter {
	return &linePrompter{in: bufio.NewReader(in), out: out}
}

func (p *linePrompter) Prompt(ctx context.Context, message string) (string, bool) {
	if ctx.Err() != nil {
		return "", false
	}
	fmt.Fprint(p.out, message+" ")
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", false
	}
	return strings.TrimRight(line, "\r\n"), true
}
