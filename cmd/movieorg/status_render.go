package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"movieorg/internal/config"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

func statusKindColor(kind statusKind) *color.Color {
	switch kind {
	case statusOK:
		return color.New(color.FgGreen)
	case statusWarn:
		return color.New(color.FgYellow)
	case statusError:
		return color.New(color.FgRed)
	default:
		return color.New(color.FgBlue)
	}
}

// paint renders message in the colour of kind when colorize is set.
func paint(kind statusKind, message string, colorize bool) string {
	c := statusKindColor(kind)
	if colorize {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.Sprint(message)
}

func printStatus(out io.Writer, kind statusKind, colorize bool, format string, args ...any) {
	fmt.Fprintln(out, paint(kind, fmt.Sprintf(format, args...), colorize))
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func shouldColorize(cfg *config.Config, writer io.Writer) bool {
	if cfg != nil && !cfg.UI.Color {
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return isTerminal(writer)
}
