// Package hclutil collects small HCL helpers shared by the configuration
// loader: block lookup, presence checks for optional attributes and the
// conversion of evaluated cty values into plain Go values.
package hclutil

import (
	"github.com/hashicorp/hcl/v2"
)

// FindUniqueBlock searches a slice of blocks for all blocks of a given name.
// It returns a diagnostic error if more than one block of that name is found.
// If no block is found, it returns nil.
func FindUniqueBlock(blocks hcl.Blocks, name string) (*hcl.Block, hcl.Diagnostics) {
	var found *hcl.Block
	var diags hcl.Diagnostics

	for _, block := range blocks {
		if block.Type != name {
			continue
		}
		if found != nil {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate \"" + name + "\" block",
				Detail:   "Only one \"" + name + "\" block is allowed.",
				Subject:  &block.DefRange,
			})
			continue
		}
		found = block
	}

	return found, diags
}

// BlocksOfType returns the blocks with the given type, preserving source order.
func BlocksOfType(blocks hcl.Blocks, name string) hcl.Blocks {
	var out hcl.Blocks
	for _, block := range blocks {
		if block.Type == name {
			out = append(out, block)
		}
	}
	return out
}

// IsExprDefined reports whether an optional attribute was actually written in
// the source. Decoders fill omitted optional attributes with zero-width
// placeholder expressions, so a nil check alone is not enough.
func IsExprDefined(expr hcl.Expression) bool {
	if expr == nil {
		return false
	}
	rng := expr.Range()
	return rng.End.Byte > rng.Start.Byte
}
