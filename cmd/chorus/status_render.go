package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"chorus/internal/preflight"
)

// checkPrinter writes preflight results as aligned "label: [STATE] detail"
// lines, colored only when out is a terminal.
type checkPrinter struct {
	out   io.Writer
	color bool
}

func newCheckPrinter(out io.Writer) checkPrinter {
	return checkPrinter{out: out, color: isTerminal(out)}
}

func (p checkPrinter) header(title string) {
	p.println(text.Colors{text.FgBlue, text.Bold}, "== "+title+" ==")
}

func (p checkPrinter) result(r preflight.Result) {
	state, colors := "ERROR", text.Colors{text.FgRed}
	switch {
	case r.Passed:
		state, colors = "OK", text.Colors{text.FgGreen}
	case r.Optional:
		state, colors = "WARN", text.Colors{text.FgYellow}
	}
	line := fmt.Sprintf("  %-20s [%s]", r.Name+":", state)
	if r.Detail != "" {
		line += " " + r.Detail
	}
	p.println(colors, line)
}

func (p checkPrinter) println(colors text.Colors, line string) {
	if p.color {
		line = colors.Sprint(line)
	}
	fmt.Fprintln(p.out, line)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
