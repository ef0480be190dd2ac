package hclconfig

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/smartnodego/internal/component"
	"github.com/specialistvlad/smartnodego/internal/config"
	"github.com/specialistvlad/smartnodego/internal/ctxlog"
	"github.com/specialistvlad/smartnodego/internal/fsutil"
	"github.com/specialistvlad/smartnodego/internal/hclutil"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// Extension is the file extension picked up when scanning directories.
const Extension = ".hcl"

// Loader is the HCL implementation of config.Loader.
type Loader struct {
	environ func() []string
}

var _ config.Loader = (*Loader)(nil)

// NewLoader creates a new HCL configuration loader reading the process
// environment.
func NewLoader() *Loader {
	return &Loader{environ: os.Environ}
}

// parsedFile keeps the top-level content of one file between passes.
type parsedFile struct {
	path    string
	content *hcl.BodyContent
}

// Load parses every .hcl file reachable from paths and translates them into a
// single Model. Any diagnostics error aborts loading.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := fsutil.FindFiles(paths, Extension)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no %s files found in %s", Extension, strings.Join(paths, ", "))
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	var parsed []parsedFile
	var diags hcl.Diagnostics

	// First pass: syntax and block headers, so that component.NAME can be
	// offered to expressions in every file regardless of file order.
	declared := make(map[string]*hcl.Block)
	var boot *hcl.Block
	for _, path := range files {
		f, fileDiags := parser.ParseHCLFile(path)
		diags = append(diags, fileDiags...)
		if fileDiags.HasErrors() {
			continue
		}
		content, contentDiags := f.Body.Content(rootSchema)
		diags = append(diags, contentDiags...)
		if contentDiags.HasErrors() {
			continue
		}

		b, bootDiags := hclutil.FindUniqueBlock(content.Blocks, blockBoot)
		diags = append(diags, bootDiags...)
		if b != nil {
			if boot != nil {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Duplicate \"boot\" block",
					Detail:   fmt.Sprintf("A boot block is already defined at %s.", boot.DefRange),
					Subject:  &b.DefRange,
				})
			} else {
				boot = b
			}
		}

		for _, block := range hclutil.BlocksOfType(content.Blocks, blockComponent) {
			name := block.Labels[0]
			if prev, exists := declared[name]; exists {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Duplicate component",
					Detail:   fmt.Sprintf("Component %q is already declared at %s.", name, prev.DefRange),
					Subject:  &block.DefRange,
				})
				continue
			}
			declared[name] = block
		}
		parsed = append(parsed, parsedFile{path: path, content: content})
	}
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL configuration: %w", diags)
	}

	evalCtx := l.evalContext(declared)
	model := config.NewModel()

	// Second pass: decode bodies in file then source order.
	for _, pf := range parsed {
		for _, block := range hclutil.BlocksOfType(pf.content.Blocks, blockComponent) {
			if declared[block.Labels[0]] != block {
				continue
			}
			d, blockDiags := decodeComponent(block, evalCtx, pf.path)
			diags = append(diags, blockDiags...)
			if blockDiags.HasErrors() {
				continue
			}
			if err := model.Add(d); err != nil {
				return nil, err
			}
			logger.Debug("Decoded component.", "component", d.Name, "package", d.Package, "symbol", d.Component)
		}
	}

	if boot != nil {
		order, bootDiags := decodeBoot(boot, evalCtx)
		diags = append(diags, bootDiags...)
		model.Order = order
	}
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL configuration: %w", diags)
	}

	logger.Debug("HCL loading complete.", "components", len(model.Components), "order", len(model.Order))
	return model, nil
}

// functions is the small set of helpers available to expressions.
var functions = map[string]function.Function{
	"tonumber": stdlib.MakeToFunc(cty.Number),
	"tostring": stdlib.MakeToFunc(cty.String),
	"tobool":   stdlib.MakeToFunc(cty.Bool),
	"upper":    stdlib.UpperFunc,
	"lower":    stdlib.LowerFunc,
	"format":   stdlib.FormatFunc,
	"coalesce": stdlib.CoalesceFunc,
}

// evalContext exposes env.NAME and component.NAME to expressions.
func (l *Loader) evalContext(declared map[string]*hcl.Block) *hcl.EvalContext {
	env := make(map[string]string)
	for _, kv := range l.environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			env[k] = v
		}
	}
	names := make(map[string]string, len(declared))
	for name := range declared {
		names[name] = name
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env":       hclutil.StringMap(env),
			"component": hclutil.StringMap(names),
		},
		Functions: functions,
	}
}

func decodeBoot(block *hcl.Block, evalCtx *hcl.EvalContext) ([]string, hcl.Diagnostics) {
	var b bootBlock
	diags := gohcl.DecodeBody(block.Body, evalCtx, &b)
	if diags.HasErrors() || !hclutil.IsExprDefined(b.Order) {
		return nil, diags
	}
	var order []string
	diags = append(diags, gohcl.DecodeExpression(b.Order, evalCtx, &order)...)
	return order, diags
}

func decodeComponent(block *hcl.Block, evalCtx *hcl.EvalContext, source string) (*config.Descriptor, hcl.Diagnostics) {
	var cb componentBlock
	diags := gohcl.DecodeBody(block.Body, evalCtx, &cb)
	if diags.HasErrors() {
		return nil, diags
	}

	d := &config.Descriptor{
		Name:      block.Labels[0],
		Package:   cb.Package,
		Component: cb.Component,
		Source:    source,
	}

	ctorArgs, argDiags := decodeArgs(cb.ConstructorArgs, evalCtx, "constructor_args")
	diags = append(diags, argDiags...)
	d.ConstructorArgs = ctorArgs

	if cb.InitFunction != "" {
		initArgs, argDiags := decodeArgs(cb.InitArgs, evalCtx, "init_args")
		diags = append(diags, argDiags...)
		d.Init = &config.InitHook{Method: cb.InitFunction, Args: initArgs}
	}

	if cb.CallFunctionRegularly != "" {
		d.Recurring = &config.RecurringHook{Method: cb.CallFunctionRegularly}
		if hclutil.IsExprDefined(cb.CallInterval) {
			raw, valDiags := evalNative(cb.CallInterval, evalCtx, "call_interval")
			diags = append(diags, valDiags...)
			if !valDiags.HasErrors() && raw != nil {
				interval, err := component.ParseDuration(raw)
				if err == nil && interval < 0 {
					err = fmt.Errorf("must not be negative")
				}
				if err != nil {
					rng := cb.CallInterval.Range()
					diags = append(diags, &hcl.Diagnostic{
						Severity: hcl.DiagError,
						Summary:  "Invalid call_interval",
						Detail:   err.Error(),
						Subject:  &rng,
					})
				}
				d.Recurring.Interval = interval
			}
		}
	}

	return d, diags
}

// decodeArgs evaluates an optional argument attribute. Lists become
// positional arguments, objects keyword arguments and anything else is
// ignored.
func decodeArgs(expr hcl.Expression, evalCtx *hcl.EvalContext, attr string) (component.Args, hcl.Diagnostics) {
	if !hclutil.IsExprDefined(expr) {
		return component.Args{}, nil
	}
	raw, diags := evalNative(expr, evalCtx, attr)
	if diags.HasErrors() {
		return component.Args{}, diags
	}
	return component.ArgsFrom(raw), diags
}

func evalNative(expr hcl.Expression, evalCtx *hcl.EvalContext, attr string) (any, hcl.Diagnostics) {
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return nil, diags
	}
	native, err := hclutil.ToNative(val)
	if err != nil {
		rng := expr.Range()
		return nil, append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Unsupported value in " + attr,
			Detail:   err.Error(),
			Subject:  &rng,
		})
	}
	return native, diags
}
