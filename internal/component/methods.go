package component

import (
	"context"
	"reflect"
	"unicode"
	"unicode/utf8"
)

// Method is the normalized form of a lifecycle method bound to an instance.
type Method func(ctx context.Context, args Args) error

// MethodProvider lets an instance expose lifecycle methods explicitly instead
// of relying on reflection.
type MethodProvider interface {
	Method(name string) (Method, bool)
}

var (
	ctxType   = reflect.TypeOf((*context.Context)(nil)).Elem()
	argsType  = reflect.TypeOf(Args{})
	errorType = reflect.TypeOf((*error)(nil)).Elem()
)

// LookupMethod finds the method called name on instance. MethodProvider wins
// over reflection. Reflection tries the exact name first and then the name
// with its first letter upper-cased, so configuration written as "publish"
// binds to Publish. Methods with an unsupported signature are not found.
func LookupMethod(instance any, name string) (Method, bool) {
	if instance == nil || name == "" {
		return nil, false
	}
	if p, ok := instance.(MethodProvider); ok {
		if m, ok := p.Method(name); ok && m != nil {
			return m, true
		}
	}

	v := reflect.ValueOf(instance)
	for _, candidate := range methodNames(name) {
		mv := v.MethodByName(candidate)
		if !mv.IsValid() {
			continue
		}
		if m, ok := adapt(mv); ok {
			return m, true
		}
	}
	return nil, false
}

func methodNames(name string) []string {
	r, size := utf8.DecodeRuneInString(name)
	if unicode.IsUpper(r) {
		return []string{name}
	}
	return []string{name, string(unicode.ToUpper(r)) + name[size:]}
}

// adapt wraps one of the supported signatures:
//
//	func(context.Context, Args) error
//	func(context.Context) error
//	func() error
//	func()
func adapt(mv reflect.Value) (Method, bool) {
	t := mv.Type()
	if t.IsVariadic() || t.NumOut() > 1 {
		return nil, false
	}
	returnsErr := t.NumOut() == 1
	if returnsErr && t.Out(0) != errorType {
		return nil, false
	}

	switch {
	case t.NumIn() == 2 && t.In(0) == ctxType && t.In(1) == argsType && returnsErr:
		fn := mv.Interface().(func(context.Context, Args) error)
		return Method(fn), true
	case t.NumIn() == 1 && t.In(0) == ctxType && returnsErr:
		fn := mv.Interface().(func(context.Context) error)
		return func(ctx context.Context, _ Args) error { return fn(ctx) }, true
	case t.NumIn() == 0 && returnsErr:
		fn := mv.Interface().(func() error)
		return func(context.Context, Args) error { return fn() }, true
	case t.NumIn() == 0 && !returnsErr:
		fn := mv.Interface().(func())
		return func(context.Context, Args) error { fn(); return nil }, true
	}
	return nil, false
}
