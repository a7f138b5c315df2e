// Package registry records metadata about callable tool functions so that a
// planner (human or LLM) can introspect what is available before invoking it.
//
// Go has no runtime access to parameter names, so callers declare them
// explicitly at registration time; parameter and return types are resolved
// through reflection in one place (typeLabel) and the rest of the system only
// sees the resulting Signature data.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/marcus/dispatch/internal/logging"
)

// Registration failure modes. All surface at composition time, never later.
var (
	ErrNotFunc     = errors.New("not a function")
	ErrVariadic    = errors.New("variadic functions are not supported")
	ErrParamCount  = errors.New("declared parameter count does not match function")
	ErrParamOrder  = errors.New("required parameter follows optional parameter")
	ErrDefaultType = errors.New("default value is not assignable to parameter type")
	ErrDuplicate   = errors.New("function already registered")
	ErrMissingArgs = errors.New("missing required arguments")
	ErrTooManyArgs = errors.New("too many arguments")
	ErrArgType     = errors.New("argument is not assignable to parameter type")
)

// DuplicatePolicy controls what Register does when a name is already taken.
type DuplicatePolicy int

const (
	// Fail rejects the second registration with ErrDuplicate.
	Fail DuplicatePolicy = iota
	// Warn logs and overwrites, last registration wins.
	Warn
	// Overwrite silently replaces the existing entry.
	Overwrite
)

// ParsePolicy converts a config string into a DuplicatePolicy.
func ParsePolicy(s string) (DuplicatePolicy, error) {
	switch s {
	case "", "fail":
		return Fail, nil
	case "warn":
		return Warn, nil
	case "overwrite":
		return Overwrite, nil
	default:
		return Fail, fmt.Errorf("invalid duplicate policy: %q", s)
	}
}

// Signature is the recorded shape of a registered function. The field layout
// doubles as the tool-description document handed to an LLM planner.
type Signature struct {
	Name         string            `json:"name"`
	Args         []string          `json:"args"`
	Types        map[string]string `json:"types"`
	ReturnType   string            `json:"return_type"`
	Doc          string            `json:"doc,omitempty"`
	RequiredArgs []string          `json:"required_args"`
	OptionalArgs []string          `json:"optional_args"`
}

// Param declares one parameter at registration time.
type Param struct {
	name       string
	def        any
	hasDefault bool
}

// Required declares a parameter with no default value.
func Required(name string) Param {
	return Param{name: name}
}

// Optional declares a parameter with a default value, used by Call when the
// caller omits it.
func Optional(name string, def any) Param {
	return Param{name: name, def: def, hasDefault: true}
}

// Function is a registered callable plus its metadata.
type Function struct {
	Signature

	fn       reflect.Value
	in       []reflect.Type  // parameter types, context excluded
	defaults []reflect.Value // indexed like in; invalid for required params
	takesCtx bool
	outIdx   int // index of the value result, -1 if none
	errIdx   int // index of the trailing error result, -1 if none
}

// Registry maps function names to their metadata and callable values.
// It is built once at composition time and read-only afterward; it is not
// safe for concurrent registration.
type Registry struct {
	fns    map[string]*Function
	order  []string
	policy DuplicatePolicy
	log    *logging.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithDuplicatePolicy sets the duplicate-name policy (default Fail).
func WithDuplicatePolicy(p DuplicatePolicy) Option {
	return func(r *Registry) { r.policy = p }
}

// WithLogger sets the logger used for duplicate warnings.
func WithLogger(l *logging.Logger) Option {
	return func(r *Registry) { r.log = l }
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{fns: make(map[string]*Function)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var (
	ctxType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errType = reflect.TypeOf((*error)(nil)).Elem()
)

// Register computes the metadata for fn and installs it under name.
// Params are matched to fn's parameters positionally; a leading
// context.Context parameter is passed through Call and excluded from the
// signature. Registration never produces a partial entry: any mismatch
// between the declared params and the reflected function fails the whole
// call.
func (r *Registry) Register(name, doc string, fn any, params ...Param) (*Function, error) {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func {
		return nil, fmt.Errorf("register %s: %w", name, ErrNotFunc)
	}
	t := v.Type()
	if t.IsVariadic() {
		return nil, fmt.Errorf("register %s: %w", name, ErrVariadic)
	}

	takesCtx := t.NumIn() > 0 && t.In(0) == ctxType
	numParams := t.NumIn()
	if takesCtx {
		numParams--
	}
	if numParams != len(params) {
		return nil, fmt.Errorf("register %s: %d declared, function takes %d: %w",
			name, len(params), numParams, ErrParamCount)
	}

	f := &Function{
		Signature: Signature{
			Name:  name,
			Doc:   doc,
			Types: make(map[string]string, len(params)),
		},
		fn:       v,
		takesCtx: takesCtx,
		outIdx:   -1,
		errIdx:   -1,
	}

	seenOptional := false
	for i, p := range params {
		pt := t.In(i + boolToInt(takesCtx))
		f.Args = append(f.Args, p.name)
		f.Types[p.name] = typeLabel(pt)
		f.in = append(f.in, pt)

		if p.hasDefault {
			seenOptional = true
			dv, err := defaultValue(p.def, pt)
			if err != nil {
				return nil, fmt.Errorf("register %s: parameter %q: %w", name, p.name, err)
			}
			f.defaults = append(f.defaults, dv)
			f.OptionalArgs = append(f.OptionalArgs, p.name)
		} else {
			if seenOptional {
				return nil, fmt.Errorf("register %s: parameter %q: %w", name, p.name, ErrParamOrder)
			}
			f.defaults = append(f.defaults, reflect.Value{})
			f.RequiredArgs = append(f.RequiredArgs, p.name)
		}
	}

	f.ReturnType = "none"
	for i := 0; i < t.NumOut(); i++ {
		if i == t.NumOut()-1 && t.Out(i) == errType {
			f.errIdx = i
			continue
		}
		if f.outIdx == -1 {
			f.outIdx = i
			f.ReturnType = typeLabel(t.Out(i))
		}
	}

	if _, exists := r.fns[name]; exists {
		switch r.policy {
		case Fail:
			return nil, fmt.Errorf("register %s: %w", name, ErrDuplicate)
		case Warn:
			if r.log != nil {
				r.log.Warnf("overwriting registered function %q", name)
			}
		}
		// overwrite keeps the original position in the order slice
	} else {
		r.order = append(r.order, name)
	}
	r.fns[name] = f

	return f, nil
}

// Get returns the registered function for name.
func (r *Registry) Get(name string) (*Function, bool) {
	f, ok := r.fns[name]
	return f, ok
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.fns[name]
	return ok
}

// Names returns registered names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// List returns all registered functions in registration order.
func (r *Registry) List() []*Function {
	out := make([]*Function, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.fns[name])
	}
	return out
}

// Len returns the number of registered functions.
func (r *Registry) Len() int {
	return len(r.fns)
}

// Describe serializes every signature, in registration order, as a JSON
// array suitable for a planner's tool listing.
func (r *Registry) Describe() ([]byte, error) {
	sigs := make([]Signature, 0, len(r.order))
	for _, name := range r.order {
		sigs = append(sigs, r.fns[name].Signature)
	}
	return json.MarshalIndent(sigs, "", "  ")
}

// Call invokes the function with positional args, filling omitted trailing
// optional parameters from their declared defaults. It returns the
// function's value result (nil when the function returns nothing) and the
// trailing error result, if any.
func (f *Function) Call(ctx context.Context, args ...any) (any, error) {
	if len(args) < len(f.RequiredArgs) {
		return nil, fmt.Errorf("call %s: have %d, need %d: %w",
			f.Name, len(args), len(f.RequiredArgs), ErrMissingArgs)
	}
	if len(args) > len(f.Args) {
		return nil, fmt.Errorf("call %s: have %d, max %d: %w",
			f.Name, len(args), len(f.Args), ErrTooManyArgs)
	}

	in := make([]reflect.Value, 0, len(f.in)+1)
	if f.takesCtx {
		in = append(in, reflect.ValueOf(ctx))
	}
	for i, pt := range f.in {
		if i < len(args) {
			av, err := argValue(args[i], pt)
			if err != nil {
				return nil, fmt.Errorf("call %s: argument %q: %w", f.Name, f.Args[i], err)
			}
			in = append(in, av)
		} else {
			in = append(in, f.defaults[i])
		}
	}

	out := f.fn.Call(in)

	var err error
	if f.errIdx >= 0 && !out[f.errIdx].IsNil() {
		err = out[f.errIdx].Interface().(error)
	}
	var result any
	if f.outIdx >= 0 {
		result = out[f.outIdx].Interface()
	}
	return result, err
}

// defaultValue converts a declared default into a reflect.Value assignable
// to the parameter type. A nil default yields the type's zero value.
func defaultValue(def any, pt reflect.Type) (reflect.Value, error) {
	if def == nil {
		return reflect.Zero(pt), nil
	}
	dv := reflect.ValueOf(def)
	if !dv.Type().AssignableTo(pt) {
		return reflect.Value{}, fmt.Errorf("%s to %s: %w", dv.Type(), pt, ErrDefaultType)
	}
	if pt.Kind() == reflect.Interface {
		conv := reflect.New(pt).Elem()
		conv.Set(dv)
		return conv, nil
	}
	return dv, nil
}

func argValue(arg any, pt reflect.Type) (reflect.Value, error) {
	if arg == nil {
		switch pt.Kind() {
		case reflect.Interface, reflect.Ptr, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
			return reflect.Zero(pt), nil
		default:
			return reflect.Value{}, fmt.Errorf("nil to %s: %w", pt, ErrArgType)
		}
	}
	av := reflect.ValueOf(arg)
	if !av.Type().AssignableTo(pt) {
		return reflect.Value{}, fmt.Errorf("%s to %s: %w", av.Type(), pt, ErrArgType)
	}
	if pt.Kind() == reflect.Interface {
		conv := reflect.New(pt).Elem()
		conv.Set(av)
		return conv, nil
	}
	return av, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
