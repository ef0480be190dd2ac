// Package virtual provides simulated sensors for nodes without attached
// hardware. Readings are drawn uniformly from a configured range, so the rest
// of a node (printers, publishers) can be exercised end to end.
package virtual

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/specialistvlad/smartnodego/internal/catalog"
	"github.com/specialistvlad/smartnodego/internal/component"
	"github.com/specialistvlad/smartnodego/internal/ctxlog"
)

// Ref is the unit reference configuration uses.
const Ref = ".sensors.virtual"

// Version is reported when a sensor is registered.
const Version = "0.3"

// Module implements the catalog.Module interface for this package.
type Module struct{}

// Register provides the unit with its sensor factories.
func (m *Module) Register(c *catalog.Catalog) {
	c.Provide(&component.Unit{
		Ref:     Ref,
		Version: Version,
		Symbols: map[string]component.Factory{
			"Thermometer": component.FactoryFunc(NewThermometer),
			"Hygrometer":  component.FactoryFunc(NewHygrometer),
		},
	})
}

// Sensor is a simulated sensor producing one quantity.
type Sensor struct {
	quantity  string
	unit      string
	min, max  float64
	precision int

	mu        sync.Mutex
	rng       *rand.Rand
	offset    float64
	last      float64
	reads     int
	published int
}

var _ component.Reader = (*Sensor)(nil)

// NewThermometer builds a temperature sensor. Keyword arguments: min, max
// (degrees Celsius, default 18 and 24), precision (decimals, default 1) and
// seed for reproducible readings.
func NewThermometer(_ context.Context, args component.Args) (any, error) {
	return newSensor(args, "temperature", "C", 18, 24)
}

// NewHygrometer builds a relative humidity sensor with the same arguments as
// NewThermometer and a default range of 30 to 70 percent.
func NewHygrometer(_ context.Context, args component.Args) (any, error) {
	return newSensor(args, "humidity", "%", 30, 70)
}

func newSensor(args component.Args, quantity, unit string, defMin, defMax float64) (*Sensor, error) {
	lo, err := args.Float(-1, "min", defMin)
	if err != nil {
		return nil, err
	}
	hi, err := args.Float(-1, "max", defMax)
	if err != nil {
		return nil, err
	}
	if lo >= hi {
		return nil, fmt.Errorf("min (%g) must be below max (%g)", lo, hi)
	}
	precision, err := args.Int(-1, "precision", 1)
	if err != nil {
		return nil, err
	}
	if precision < 0 || precision > 6 {
		return nil, fmt.Errorf("precision must be between 0 and 6, got %d", precision)
	}
	seed, err := args.Int(-1, "seed", int(time.Now().UnixNano()))
	if err != nil {
		return nil, err
	}

	return &Sensor{
		quantity:  quantity,
		unit:      unit,
		min:       lo,
		max:       hi,
		precision: precision,
		rng:       rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1)),
	}, nil
}

// Calibrate sets an offset added to every reading. It takes the offset as
// the first positional or the "offset" keyword argument.
func (s *Sensor) Calibrate(ctx context.Context, args component.Args) error {
	offset, err := args.Float(0, "offset", 0)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.offset = offset
	s.mu.Unlock()
	ctxlog.FromContext(ctx).Debug("Sensor calibrated.", "quantity", s.quantity, "offset", offset)
	return nil
}

// Read takes a new measurement.
func (s *Sensor) Read(context.Context) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.min + s.rng.Float64()*(s.max-s.min) + s.offset
	scale := math.Pow10(s.precision)
	v = math.Round(v*scale) / scale
	s.last = v
	s.reads++

	return map[string]any{
		s.quantity: v,
		"unit":     s.unit,
	}, nil
}

// Publish takes a measurement and logs it. It is meant to be called
// regularly.
func (s *Sensor) Publish(ctx context.Context) error {
	reading, err := s.Read(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.published++
	count := s.published
	s.mu.Unlock()

	ctxlog.FromContext(ctx).Info("Published reading.", "quantity", s.quantity, "value", reading[s.quantity], "unit", s.unit, "count", count)
	return nil
}

// Last returns the most recent value and whether any reading was taken.
func (s *Sensor) Last() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.reads > 0
}
