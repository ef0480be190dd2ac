package remotegpio

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/specialistvlad/smartnodego/internal/component"
	"github.com/specialistvlad/smartnodego/internal/ctxlog"
)

// Pin modes understood by the controller.
const (
	ModeInput  = "input"
	ModeOutput = "output"
	ModePullUp = "input_pullup"
)

// Pin is one GPIO pin on a remote controller.
type Pin struct {
	bridge Requester
	number int
	mode   string

	mu    sync.Mutex
	value int
}

var _ component.Reader = (*Pin)(nil)

// NewPin builds a pin. Arguments: bridge (a Bridge component, required), pin
// (number, required), mode (input, output or input_pullup; default output)
// and value (initial output level, default 0). Nothing is sent before Setup.
func NewPin(_ context.Context, args component.Args) (any, error) {
	raw, _ := args.Param(0, "bridge")
	bridge, ok := raw.(Requester)
	if !ok {
		return nil, fmt.Errorf("bridge %v is not a registered remote GPIO bridge", raw)
	}
	number, err := args.Int(1, "pin", -1)
	if err != nil {
		return nil, err
	}
	if number < 0 {
		return nil, fmt.Errorf("argument \"pin\" is required")
	}
	mode, err := args.String(2, "mode", ModeOutput)
	if err != nil {
		return nil, err
	}
	mode = strings.ToLower(mode)
	switch mode {
	case ModeInput, ModeOutput, ModePullUp:
	default:
		return nil, fmt.Errorf("unsupported pin mode %q", mode)
	}
	on, err := args.Bool(3, "value", false)
	if err != nil {
		return nil, err
	}
	return &Pin{bridge: bridge, number: number, mode: mode, value: level(on)}, nil
}

// Setup configures the pin on the controller and drives the initial value
// for outputs.
func (p *Pin) Setup(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	data := map[string]any{"pin": p.number, "mode": p.mode}
	if p.mode == ModeOutput {
		data["value"] = p.value
	}
	if _, err := p.bridge.Request(ctx, "pin:setup", data); err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Debug("Pin configured.", "pin", p.number, "mode", p.mode)
	return nil
}

// Write drives an output pin.
func (p *Pin) Write(ctx context.Context, on bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.write(ctx, level(on))
}

func (p *Pin) write(ctx context.Context, v int) error {
	if p.mode != ModeOutput {
		return fmt.Errorf("pin %d is not an output", p.number)
	}
	if _, err := p.bridge.Request(ctx, "pin:write", map[string]any{"pin": p.number, "value": v}); err != nil {
		return err
	}
	p.value = v
	return nil
}

// Toggle inverts an output pin. It is meant to be called regularly, for
// example to blink a status LED.
func (p *Pin) Toggle(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.write(ctx, 1-p.value)
}

// Read returns the pin level. Outputs report the last written value without
// a round trip.
func (p *Pin) Read(ctx context.Context) (map[string]any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.mode != ModeOutput {
		v, err := p.bridge.Request(ctx, "pin:read", map[string]any{"pin": p.number})
		if err != nil {
			return nil, err
		}
		n, ok := toLevel(v)
		if !ok {
			return nil, fmt.Errorf("pin %d: unexpected reading %v", p.number, v)
		}
		p.value = n
	}
	return map[string]any{"pin": p.number, "value": p.value}, nil
}

func level(on bool) int {
	if on {
		return 1
	}
	return 0
}

// toLevel accepts the shapes a JSON reply may carry a level in.
func toLevel(v any) (int, bool) {
	switch t := v.(type) {
	case bool:
		return level(t), true
	case int:
		return level(t != 0), true
	case int64:
		return level(t != 0), true
	case float64:
		return level(t != 0), true
	case map[string]any:
		return toLevel(t["value"])
	default:
		return 0, false
	}
}
