// Package report renders boot results and the unit catalog for humans.
// Colors are only emitted when the writer is a terminal.
package report

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/specialistvlad/smartnodego/internal/orchestrator"
)

type styles struct {
	title  lipgloss.Style
	header lipgloss.Style
	body   lipgloss.Style
	muted  lipgloss.Style
	ok     lipgloss.Style
	warn   lipgloss.Style
	err    lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")),
		header: r.NewStyle().
			Bold(true).
			Padding(0, 1),
		body: r.NewStyle().
			Padding(0, 1),
		muted: r.NewStyle().
			Foreground(lipgloss.Color("240")),
		ok: r.NewStyle().
			Foreground(lipgloss.Color("42")).
			Padding(0, 1),
		warn: r.NewStyle().
			Foreground(lipgloss.Color("214")).
			Padding(0, 1),
		err: r.NewStyle().
			Foreground(lipgloss.Color("196")).
			Padding(0, 1),
	}
}

// Printer writes reports to one writer.
type Printer struct {
	w io.Writer
	s styles
}

// New creates a Printer for w.
func New(w io.Writer) *Printer {
	return &Printer{w: w, s: newStyles(lipgloss.NewRenderer(w))}
}

// Unit is one catalog entry as listed by Units.
type Unit struct {
	Ref     string
	Version string
	Symbols []string
	// Err is set when the unit failed to load.
	Err error
}

// Boot prints one row per registration outcome followed by a summary.
func (p *Printer) Boot(outcomes []orchestrator.Outcome) error {
	t := &table{headers: []string{"COMPONENT", "PACKAGE", "SYMBOL", "VERSION", "STATE", "TIME", "REASON"}}
	registered := 0
	for _, o := range outcomes {
		state := o.State.String()
		if o.Registered() {
			registered++
			if o.Service {
				state = "service"
			}
		}
		t.addRow(o.Name, o.Package, o.Symbol, version(o.Version), state,
			o.Elapsed.Round(time.Millisecond).String(), reason(o.Err))
	}
	t.cellStyle = p.stateColumn(t, 4)

	summary := fmt.Sprintf("%d registered, %d failed", registered, len(outcomes)-registered)
	return p.write("Boot report", t, summary)
}

// Check prints the result of a dry run.
func (p *Printer) Check(outcomes []orchestrator.Outcome) error {
	t := &table{headers: []string{"COMPONENT", "PACKAGE", "SYMBOL", "VERSION", "RESULT", "REASON"}}
	passed := 0
	for _, o := range outcomes {
		result := "ok"
		if o.Err != nil {
			result = "failed"
		} else {
			passed++
		}
		t.addRow(o.Name, o.Package, o.Symbol, version(o.Version), result, reason(o.Err))
	}
	t.cellStyle = p.stateColumn(t, 4)

	summary := fmt.Sprintf("%d ok, %d failed", passed, len(outcomes)-passed)
	return p.write("Configuration check", t, summary)
}

// Units prints the catalog.
func (p *Printer) Units(units []Unit) error {
	t := &table{headers: []string{"UNIT", "VERSION", "SYMBOLS"}}
	for _, u := range units {
		symbols := strings.Join(u.Symbols, ", ")
		if u.Err != nil {
			symbols = "load failed: " + u.Err.Error()
		}
		t.addRow(u.Ref, version(u.Version), symbols)
	}
	t.cellStyle = func(row, col int) lipgloss.Style {
		if col == 2 && units[row].Err != nil {
			return p.s.err
		}
		return p.s.body
	}
	return p.write("Units", t, fmt.Sprintf("%d units", len(units)))
}

// stateColumn colors column col by the value of its cell.
func (p *Printer) stateColumn(t *table, col int) func(row, c int) lipgloss.Style {
	return func(row, c int) lipgloss.Style {
		if c != col {
			return p.s.body
		}
		switch t.rows[row][col] {
		case "registered", "ok":
			return p.s.ok
		case "service":
			return p.s.warn
		case "failed":
			return p.s.err
		default:
			return p.s.body
		}
	}
}

func (p *Printer) write(title string, t *table, summary string) error {
	var sb strings.Builder
	sb.WriteString(p.s.title.Render(title))
	sb.WriteString("\n")
	if len(t.rows) == 0 {
		sb.WriteString(p.s.muted.Render("nothing to show"))
		sb.WriteString("\n")
	} else {
		sb.WriteString(t.render(p.s))
	}
	sb.WriteString(p.s.muted.Render(summary))
	sb.WriteString("\n")

	_, err := io.WriteString(p.w, sb.String())
	return err
}

// reason shortens an outcome error to its kind and cause; the component is
// already in the row.
func reason(err error) string {
	if err == nil {
		return ""
	}
	var ce *orchestrator.ComponentError
	if errors.As(err, &ce) {
		if ce.Err == nil {
			return ce.Kind.Error()
		}
		return ce.Kind.Error() + ": " + ce.Err.Error()
	}
	return err.Error()
}

func version(v string) string {
	if v == "" {
		return "-"
	}
	return v
}
