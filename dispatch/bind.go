package dispatch

import (
	"math"

	"github.com/cockroachdb/errors"
)

// Converter turns a decoded Value into a typed argument.
type Converter[T any] func(v Value, ctx *Context) (T, error)

// Binder hands out a call's arguments in declared parameter order.
type Binder struct {
	call *Call
	next int
}

// NewBinder starts binding call's arguments from the first one.
func NewBinder(call *Call) *Binder {
	return &Binder{call: call}
}

// take returns the next argument when it matches label. Unlabelled
// parameters are written "_" and match only unlabelled arguments.
func (b *Binder) take(label string) (Value, bool) {
	if b.next >= len(b.call.Args) {
		return Value{}, false
	}
	arg := b.call.Args[b.next]
	if label == "_" {
		label = ""
	}
	if arg.Label != label {
		return Value{}, false
	}
	b.next++
	return arg, true
}

// Done fails if arguments remain unbound.
func (b *Binder) Done() error {
	if b.next < len(b.call.Args) {
		extra := b.call.Args[b.next]
		if extra.Label != "" {
			return NewInvalidArguments(b.call, errors.Newf("unexpected argument `%s:`", extra.Label))
		}
		return NewInvalidArguments(b.call, errors.Newf("unexpected argument %s", extra))
	}
	return nil
}

// Bind converts the argument for the next parameter. A parameter with a
// default value may be omitted, in which case the zero value is returned.
func Bind[T any](b *Binder, label string, hasDefault bool, conv Converter[T], ctx *Context) (T, error) {
	var zero T
	arg, ok := b.take(label)
	if !ok {
		if hasDefault {
			return zero, nil
		}
		if label == "_" || label == "" {
			return zero, NewInvalidArguments(b.call, errors.New("missing unlabelled argument"))
		}
		return zero, NewInvalidArguments(b.call, errors.Newf("missing argument `%s:`", label))
	}
	v, err := conv(arg, ctx)
	if err != nil {
		if label == "_" || label == "" {
			return zero, NewInvalidArguments(b.call, err)
		}
		return zero, NewInvalidArguments(b.call, errors.Wrapf(err, "%s", label))
	}
	return v, nil
}

// Overload returns the value of the first signature parser that accepts call.
// When none does, the first signature's failure is reported.
func Overload[V any](call *Call, ctx *Context, signatures ...func(*Call, *Context) (V, error)) (V, error) {
	var (
		zero  V
		first error
	)
	for _, parse := range signatures {
		v, err := parse(call, ctx)
		if err == nil {
			return v, nil
		}
		if first == nil {
			first = err
		}
	}
	if first == nil {
		first = NewInvalidArguments(call, errors.New("no signatures"))
	}
	return zero, first
}

func mismatch(want string, v Value) error {
	return errors.Newf("expected %s, got %s", want, v.Kind)
}

// Raw passes the decoded value through.
func Raw(v Value, _ *Context) (Value, error) { return v, nil }

// Bool accepts true and false.
func Bool(v Value, _ *Context) (bool, error) {
	if v.Kind != KindBool {
		return false, mismatch("boolean", v)
	}
	return v.Bool, nil
}

// Float accepts any number.
func Float(v Value, _ *Context) (float64, error) {
	if v.Kind != KindNumber {
		return 0, mismatch("number", v)
	}
	return v.Number, nil
}

// Int accepts integral numbers that fit in an int.
func Int(v Value, ctx *Context) (int, error) {
	return IntRange(math.MinInt, math.MaxInt)(v, ctx)
}

// UInt accepts non-negative integral numbers that fit in an int.
func UInt(v Value, ctx *Context) (int, error) {
	return IntRange(0, math.MaxInt)(v, ctx)
}

// IntRange accepts integral numbers between lo and hi inclusive. Fixed-width
// integer parameters use it with the bounds of their width.
func IntRange(lo, hi int64) Converter[int] {
	lo = max(lo, math.MinInt)
	hi = min(hi, math.MaxInt)
	return func(v Value, _ *Context) (int, error) {
		if v.Kind != KindNumber {
			return 0, mismatch("integer", v)
		}
		if v.Number != math.Trunc(v.Number) {
			return 0, errors.Newf("expected integer, got %v", v.Number)
		}
		// float64(math.MaxInt64) rounds up to 2^63, so compare against the
		// next integer instead of hi itself.
		if v.Number < float64(lo) || v.Number >= float64(hi)+1 {
			return 0, errors.Newf("integer %v out of range [%d, %d]", v.Number, lo, hi)
		}
		return int(v.Number), nil
	}
}

// String accepts string literals.
func String(v Value, _ *Context) (string, error) {
	if v.Kind != KindString {
		return "", mismatch("string", v)
	}
	return v.Text, nil
}

// CaseName accepts an enumeration case written as an atom or implicit member.
func CaseName(v Value, _ *Context) (string, error) {
	if v.Kind != KindAtom && v.Kind != KindMember {
		return "", mismatch("case name", v)
	}
	return v.Text, nil
}

// Event names a server event fired by a closure parameter.
type Event struct {
	Name string
}

// EventValue accepts an event name as a string or atom.
func EventValue(v Value, _ *Context) (Event, error) {
	if v.Kind != KindString && v.Kind != KindAtom {
		return Event{}, mismatch("event name", v)
	}
	return Event{Name: v.Text}, nil
}

// ViewReference names the template children that fill a child-content
// builder parameter.
type ViewReference struct {
	Template string
}

// ViewReferenceValue accepts a template name as an atom or string.
func ViewReferenceValue(v Value, _ *Context) (ViewReference, error) {
	if v.Kind != KindAtom && v.Kind != KindString {
		return ViewReference{}, mismatch("view reference", v)
	}
	return ViewReference{Template: v.Text}, nil
}

// ToolbarContentReference names the template children that fill a toolbar
// content builder parameter. It is written like a ViewReference.
type ToolbarContentReference struct {
	Template string
}

// ToolbarContentReferenceValue accepts a template name as an atom or string.
func ToolbarContentReferenceValue(v Value, _ *Context) (ToolbarContentReference, error) {
	if v.Kind != KindAtom && v.Kind != KindString {
		return ToolbarContentReference{}, mismatch("toolbar content reference", v)
	}
	return ToolbarContentReference{Template: v.Text}, nil
}

// Optional wraps conv so that nil decodes to a nil pointer.
func Optional[T any](conv Converter[T]) Converter[*T] {
	return func(v Value, ctx *Context) (*T, error) {
		if v.Kind == KindNil {
			return nil, nil
		}
		t, err := conv(v, ctx)
		if err != nil {
			return nil, err
		}
		return &t, nil
	}
}

// List wraps conv to decode every element of a list.
func List[T any](conv Converter[T]) Converter[[]T] {
	return func(v Value, ctx *Context) ([]T, error) {
		if v.Kind != KindList {
			return nil, mismatch("list", v)
		}
		out := make([]T, 0, len(v.Items))
		for i, item := range v.Items {
			t, err := conv(item, ctx)
			if err != nil {
				return nil, errors.Wrapf(err, "element %d", i)
			}
			out = append(out, t)
		}
		return out, nil
	}
}
