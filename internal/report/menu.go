package report

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Menu is the interactive text front end over a Reporter.
type Menu struct {
	reporter Reporter
	in       *bufio.Scanner
	out      io.Writer
}

// NewMenu reads choices from in and writes prompts and results to out.
func NewMenu(r Reporter, in io.Reader, out io.Writer) *Menu {
	return &Menu{reporter: r, in: bufio.NewScanner(in), out: out}
}

// Loop shows the menu until the user types exit or quit, or input ends.
// A failing report query ends the loop with its error.
func (m *Menu) Loop(ctx context.Context) error {
	m.printf("Available reports:\n\n")
	for _, k := range Kinds {
		m.printf("%d %s\n", int(k), k.Title())
	}
	m.printf("\n")

	for {
		choice, ok := m.prompt("Choose a report number: ")
		if !ok {
			return m.in.Err()
		}
		if isExit(choice) {
			m.printf("Exiting...\n")
			return nil
		}

		kind, ok := ParseKind(choice)
		if !ok {
			m.printf("Please enter a number from 1 to %d or \"exit\" to quit.\n", len(Kinds))
			continue
		}

		var keyword string
		if kind.NeedsKeyword() {
			if keyword, ok = m.prompt("Search for: "); !ok {
				return m.in.Err()
			}
		}

		res, err := Run(ctx, m.reporter, kind, keyword)
		if err != nil {
			return err
		}
		if err := Render(m.out, res); err != nil {
			return err
		}

		next, ok := m.prompt("Press Enter to continue or type \"exit\" to quit: ")
		if !ok || isExit(next) {
			m.printf("Exiting...\n")
			return m.in.Err()
		}
	}
}

// Render writes res as aligned columns (Table) or a labelled number (Scalar).
func Render(w io.Writer, res Result) error {
	switch r := res.(type) {
	case Scalar:
		_, err := fmt.Fprintf(w, "%s: %.2f\n", r.Label, r.Value)
		return err
	case Table:
		if len(r.Rows) == 0 {
			_, err := fmt.Fprintln(w, "(no rows)")
			return err
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, strings.Join(r.Header, "\t"))
		for _, row := range r.Rows {
			fmt.Fprintln(tw, strings.Join(row, "\t"))
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unsupported result %T", res)
	}
}

func (m *Menu) prompt(text string) (string, bool) {
	m.printf("%s", text)
	if !m.in.Scan() {
		m.printf("\n")
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}

func (m *Menu) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(m.out, format, args...)
}

func isExit(s string) bool {
	s = strings.ToLower(s)
	return s == "exit" || s == "quit"
}
