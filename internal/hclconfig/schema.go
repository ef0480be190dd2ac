package hclconfig

import (
	"github.com/hashicorp/hcl/v2"
)

const (
	blockBoot      = "boot"
	blockComponent = "component"
)

// rootSchema describes the top level of every file. Anything else at the top
// level is an error.
var rootSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: blockBoot},
		{Type: blockComponent, LabelNames: []string{"name"}},
	},
}

// bootBlock is the decoding target for the optional boot block.
type bootBlock struct {
	Order hcl.Expression `hcl:"order,optional"`
}

// componentBlock is the decoding target for a component block. Argument
// attributes stay expressions because they may be lists or objects of any
// shape.
type componentBlock struct {
	Package               string         `hcl:"package,optional"`
	Component             string         `hcl:"component,optional"`
	ConstructorArgs       hcl.Expression `hcl:"constructor_args,optional"`
	InitFunction          string         `hcl:"init_function,optional"`
	InitArgs              hcl.Expression `hcl:"init_args,optional"`
	CallFunctionRegularly string         `hcl:"call_function_regularly,optional"`
	CallInterval          hcl.Expression `hcl:"call_interval,optional"`
}
