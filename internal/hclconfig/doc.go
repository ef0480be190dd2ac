// Package hclconfig loads component configuration written in HCL.
//
// A configuration is one or more .hcl files. Each file may contain any number
// of component blocks and at most one boot block across the whole set:
//
//	boot {
//	  order = [component.thermo, "printer"]
//	}
//
//	component "thermo" {
//	  package                 = ".sensors.virtual"
//	  component               = "Thermometer"
//	  constructor_args        = { min = 18, max = 24 }
//	  init_function           = "Calibrate"
//	  init_args               = { offset = -0.5 }
//	  call_function_regularly = "Publish"
//	  call_interval           = "30s"
//	}
//
// Expressions may read environment variables through env.NAME and refer to
// declared components through component.NAME, which evaluates to the name
// itself. The latter lets the parser reject references to components that do
// not exist while leaving the actual substitution to the orchestrator. A few
// conversion and string functions (tonumber, tostring, tobool, upper, lower,
// format, coalesce) are available as well.
package hclconfig
