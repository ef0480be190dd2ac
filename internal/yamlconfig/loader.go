// Package yamlconfig loads component configuration from YAML or JSON
// documents laid out as a dictionary: one mapping per component name plus an
// optional "_order" list.
//
//	_order: [thermo, printer]
//	thermo:
//	  package: .sensors.virtual
//	  component: Thermometer
//	  constructor_args: {min: 18, max: 24}
//	  call_function_regularly: Publish
//	  call_interval: 30s
//
// ${VAR} references inside scalar values are expanded from the environment
// after parsing. Any other "$" is kept as written. A plain scalar is typed
// after expansion, so "pin: ${PIN}" may decode as a number.
package yamlconfig

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/specialistvlad/smartnodego/internal/component"
	"github.com/specialistvlad/smartnodego/internal/config"
	"github.com/specialistvlad/smartnodego/internal/ctxlog"
	"github.com/specialistvlad/smartnodego/internal/fsutil"
	"gopkg.in/yaml.v3"
)

// OrderKey is the top-level key holding the explicit registration order.
const OrderKey = "_order"

// Extensions are the file extensions picked up when scanning directories.
var Extensions = []string{".yaml", ".yml", ".json"}

// descriptorDoc is the decoding target for one component mapping.
type descriptorDoc struct {
	Package               string `yaml:"package"`
	Component             string `yaml:"component"`
	ConstructorArgs       any    `yaml:"constructor_args"`
	InitFunction          string `yaml:"init_function"`
	InitArgs              any    `yaml:"init_args"`
	CallFunctionRegularly string `yaml:"call_function_regularly"`
	CallInterval          any    `yaml:"call_interval"`
}

var knownKeys = map[string]struct{}{
	"package":                 {},
	"component":               {},
	"constructor_args":        {},
	"init_function":           {},
	"init_args":               {},
	"call_function_regularly": {},
	"call_interval":           {},
}

// Loader is the YAML/JSON implementation of config.Loader.
type Loader struct {
	expand func(string) string
}

var _ config.Loader = (*Loader)(nil)

// NewLoader creates a loader that expands variables from the process
// environment.
func NewLoader() *Loader {
	return &Loader{expand: expandEnv}
}

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnv replaces ${NAME} with the value of NAME. Unset variables expand
// to the empty string.
func expandEnv(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(ref string) string {
		return os.Getenv(ref[2 : len(ref)-1])
	})
}

// Load reads every YAML/JSON file reachable from paths and merges them into a
// single Model, files in lexical order.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("YAML loader started.", "path_count", len(paths))

	files, err := fsutil.FindFiles(paths, Extensions...)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no %s files found in %s", strings.Join(Extensions, "/"), strings.Join(paths, ", "))
	}

	model := config.NewModel()
	for _, path := range files {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		m, err := l.Parse(raw, path)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
		if err := model.Merge(m); err != nil {
			return nil, err
		}
		logger.Debug("Decoded configuration file.", "file", path, "components", len(m.Components))
	}

	logger.Debug("YAML loading complete.", "components", len(model.Components), "order", len(model.Order))
	return model, nil
}

// Parse decodes a single document. source is recorded on every descriptor.
func (l *Loader) Parse(raw []byte, source string) (*config.Model, error) {
	var doc yaml.Node
	dec := yaml.NewDecoder(strings.NewReader(string(raw)))
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return config.NewModel(), nil
		}
		return nil, err
	}
	l.expandScalars(&doc)

	model := config.NewModel()
	if len(doc.Content) == 0 {
		return model, nil
	}
	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return model, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: top level must be a mapping of component names", root.Line)
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		name := key.Value

		if name == OrderKey {
			if err := value.Decode(&model.Order); err != nil {
				return nil, fmt.Errorf("line %d: %s must be a list of names: %w", value.Line, OrderKey, err)
			}
			continue
		}

		d, err := decodeDescriptor(name, value)
		if err != nil {
			return nil, err
		}
		d.Source = source
		if err := model.Add(d); err != nil {
			return nil, err
		}
	}
	return model, nil
}

// expandScalars expands variables in every scalar below n. Plain scalars lose
// their resolved tag so that decoding types the expanded value.
func (l *Loader) expandScalars(n *yaml.Node) {
	if n.Kind == yaml.ScalarNode {
		if !strings.Contains(n.Value, "${") {
			return
		}
		if v := l.expand(n.Value); v != n.Value {
			n.Value = v
			if n.Style == 0 {
				n.Tag = ""
			}
		}
		return
	}
	for _, c := range n.Content {
		l.expandScalars(c)
	}
}

func decodeDescriptor(name string, node *yaml.Node) (*config.Descriptor, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: component %q must be a mapping", node.Line, name)
	}

	var unknown []string
	for i := 0; i+1 < len(node.Content); i += 2 {
		if _, ok := knownKeys[node.Content[i].Value]; !ok {
			unknown = append(unknown, node.Content[i].Value)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("line %d: component %q has unknown keys: %s", node.Line, name, strings.Join(unknown, ", "))
	}

	var doc descriptorDoc
	if err := node.Decode(&doc); err != nil {
		return nil, fmt.Errorf("line %d: component %q: %w", node.Line, name, err)
	}

	d := &config.Descriptor{
		Name:            name,
		Package:         doc.Package,
		Component:       doc.Component,
		ConstructorArgs: component.ArgsFrom(normalize(doc.ConstructorArgs)),
	}
	if doc.InitFunction != "" {
		d.Init = &config.InitHook{Method: doc.InitFunction, Args: component.ArgsFrom(normalize(doc.InitArgs))}
	}
	if doc.CallFunctionRegularly != "" {
		d.Recurring = &config.RecurringHook{Method: doc.CallFunctionRegularly}
		if doc.CallInterval != nil {
			interval, err := component.ParseDuration(doc.CallInterval)
			if err == nil && interval < 0 {
				err = fmt.Errorf("must not be negative")
			}
			if err != nil {
				return nil, fmt.Errorf("line %d: component %q: invalid call_interval: %w", node.Line, name, err)
			}
			d.Recurring.Interval = interval
		}
	}
	return d, nil
}

// normalize converts the map[any]any values yaml may produce for non-string
// keys into map[string]any, recursively.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = normalize(e)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[fmt.Sprint(k)] = normalize(e)
		}
		return out
	case []any:
		for i, e := range t {
			t[i] = normalize(e)
		}
		return t
	default:
		return v
	}
}
