package component

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Args is the resolved argument bag for a constructor or an init hook.
// Positional and keyword arguments are independent; a configuration provides
// either a list (positional) or a mapping (keyword).
type Args struct {
	Positional []any
	Keyword    map[string]any
}

// ArgsFrom builds Args from a raw configuration value. Lists become positional
// arguments, mappings become keyword arguments and anything else (including
// nil and scalars) yields empty Args.
func ArgsFrom(v any) Args {
	switch t := v.(type) {
	case []any:
		return Args{Positional: t}
	case map[string]any:
		return Args{Keyword: t}
	default:
		return Args{}
	}
}

// Len returns the total number of arguments.
func (a Args) Len() int {
	return len(a.Positional) + len(a.Keyword)
}

// IsEmpty reports whether no arguments were provided.
func (a Args) IsEmpty() bool {
	return a.Len() == 0
}

// Clone returns a shallow copy whose slice and map can be modified without
// affecting the original.
func (a Args) Clone() Args {
	var out Args
	if a.Positional != nil {
		out.Positional = make([]any, len(a.Positional))
		copy(out.Positional, a.Positional)
	}
	if a.Keyword != nil {
		out.Keyword = make(map[string]any, len(a.Keyword))
		for k, v := range a.Keyword {
			out.Keyword[k] = v
		}
	}
	return out
}

// Param binds a parameter the way a call site would: the keyword wins, then
// the positional slot. Pass a negative index for keyword-only parameters.
func (a Args) Param(index int, key string) (any, bool) {
	if key != "" {
		if v, ok := a.Keyword[key]; ok {
			return v, true
		}
	}
	if index >= 0 && index < len(a.Positional) {
		return a.Positional[index], true
	}
	return nil, false
}

// As binds a parameter and asserts it to T. A missing or nil parameter returns
// the zero value and false; a parameter of the wrong type is an error.
func As[T any](a Args, index int, key string) (T, bool, error) {
	var zero T
	v, ok := a.Param(index, key)
	if !ok || v == nil {
		return zero, false, nil
	}
	t, ok := v.(T)
	if !ok {
		return zero, false, fmt.Errorf("parameter %s: expected %T, got %T", paramName(index, key), zero, v)
	}
	return t, true, nil
}

// String returns a string parameter or def when absent.
func (a Args) String(index int, key, def string) (string, error) {
	v, ok := a.Param(index, key)
	if !ok || v == nil {
		return def, nil
	}
	switch t := v.(type) {
	case string:
		return t, nil
	case int, int64, float64, bool:
		return fmt.Sprint(t), nil
	default:
		return "", fmt.Errorf("parameter %s: expected string, got %T", paramName(index, key), v)
	}
}

// Int returns an integer parameter or def when absent. Integral floats are
// accepted because some configuration formats only know one number type.
func (a Args) Int(index int, key string, def int) (int, error) {
	v, ok := a.Param(index, key)
	if !ok || v == nil {
		return def, nil
	}
	switch t := v.(type) {
	case int:
		return t, nil
	case int64:
		return int(t), nil
	case float64:
		if t != math.Trunc(t) {
			return 0, fmt.Errorf("parameter %s: %v is not an integer", paramName(index, key), t)
		}
		return int(t), nil
	case string:
		n, err := strconv.Atoi(t)
		if err != nil {
			return 0, fmt.Errorf("parameter %s: %w", paramName(index, key), err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("parameter %s: expected integer, got %T", paramName(index, key), v)
	}
}

// Float returns a numeric parameter or def when absent.
func (a Args) Float(index int, key string, def float64) (float64, error) {
	v, ok := a.Param(index, key)
	if !ok || v == nil {
		return def, nil
	}
	switch t := v.(type) {
	case float64:
		return t, nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, fmt.Errorf("parameter %s: %w", paramName(index, key), err)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("parameter %s: expected number, got %T", paramName(index, key), v)
	}
}

// Bool returns a boolean parameter or def when absent. Numbers follow the
// usual 0/1 convention of pin values.
func (a Args) Bool(index int, key string, def bool) (bool, error) {
	v, ok := a.Param(index, key)
	if !ok || v == nil {
		return def, nil
	}
	switch t := v.(type) {
	case bool:
		return t, nil
	case int:
		return t != 0, nil
	case int64:
		return t != 0, nil
	case float64:
		return t != 0, nil
	case string:
		b, err := strconv.ParseBool(t)
		if err != nil {
			return false, fmt.Errorf("parameter %s: %w", paramName(index, key), err)
		}
		return b, nil
	default:
		return false, fmt.Errorf("parameter %s: expected bool, got %T", paramName(index, key), v)
	}
}

// Duration returns a duration parameter or def when absent. Strings are parsed
// with time.ParseDuration, numbers are seconds.
func (a Args) Duration(index int, key string, def time.Duration) (time.Duration, error) {
	v, ok := a.Param(index, key)
	if !ok || v == nil {
		return def, nil
	}
	d, err := ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parameter %s: %w", paramName(index, key), err)
	}
	return d, nil
}

// ParseDuration converts a configuration value into a duration. Strings use
// time.ParseDuration syntax; bare numbers are seconds.
func ParseDuration(v any) (time.Duration, error) {
	switch t := v.(type) {
	case time.Duration:
		return t, nil
	case string:
		return time.ParseDuration(t)
	case int:
		return time.Duration(t) * time.Second, nil
	case int64:
		return time.Duration(t) * time.Second, nil
	case float64:
		return time.Duration(t * float64(time.Second)), nil
	default:
		return 0, fmt.Errorf("expected duration string or seconds, got %T", v)
	}
}

func paramName(index int, key string) string {
	if key != "" {
		return strconv.Quote(key)
	}
	return "#" + strconv.Itoa(index)
}
