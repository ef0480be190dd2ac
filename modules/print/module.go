package print

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/specialistvlad/smartnodego/internal/catalog"
	"github.com/specialistvlad/smartnodego/internal/component"
	"github.com/specialistvlad/smartnodego/internal/ctxlog"
)

// Ref is the unit reference configuration uses.
const Ref = ".utils.print"

// Version is reported when a printer is registered.
const Version = "1.1"

// Module implements the catalog.Module interface for this package.
type Module struct{}

// Register provides the unit with the Printer factory.
func (m *Module) Register(c *catalog.Catalog) {
	c.Provide(&component.Unit{
		Ref:     Ref,
		Version: Version,
		Symbols: map[string]component.Factory{
			"Printer": component.FactoryFunc(NewPrinter),
		},
	})
}

// Printer writes the readings of another component to standard output.
type Printer struct {
	source component.Reader
	label  string

	mu  sync.Mutex
	out io.Writer
}

// NewPrinter takes the component to print as the first positional or the
// "source" keyword argument, and an optional "label" printed with every
// reading.
func NewPrinter(_ context.Context, args component.Args) (any, error) {
	raw, ok := args.Param(0, "source")
	if !ok {
		return nil, fmt.Errorf("argument \"source\" is required")
	}
	source, ok := raw.(component.Reader)
	if !ok {
		return nil, fmt.Errorf("source %v is not a registered component that produces readings", raw)
	}
	label, err := args.String(1, "label", "")
	if err != nil {
		return nil, err
	}
	return New(source, label, os.Stdout), nil
}

// New creates a Printer writing to out.
func New(source component.Reader, label string, out io.Writer) *Printer {
	return &Printer{source: source, label: label, out: out}
}

// Print reads the source once and prints the reading with sorted keys.
func (p *Printer) Print(ctx context.Context) error {
	ctxlog.FromContext(ctx).Info("Printing reading")

	reading, err := p.source.Read(ctx)
	if err != nil {
		return fmt.Errorf("reading source: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.label != "" {
		fmt.Fprintf(p.out, "%s:\n", p.label)
	}
	if reading == nil {
		fmt.Fprintln(p.out, "      (null)")
		return nil
	}

	// Sort keys for consistent output
	keys := make([]string, 0, len(reading))
	for k := range reading {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch v := reading[k].(type) {
		case string:
			fmt.Fprintf(p.out, "      %s = %q\n", k, v)
		default:
			fmt.Fprintf(p.out, "      %s = %v\n", k, v)
		}
	}
	return nil
}
