package dispatch

import (
	"strconv"
	"strings"
)

// Kind identifies the shape of a Value.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindString
	KindAtom
	KindMember
	KindList
	KindTuple
)

var kindNames = [...]string{
	KindNil:    "nil",
	KindBool:   "boolean",
	KindNumber: "number",
	KindString: "string",
	KindAtom:   "atom",
	KindMember: "member",
	KindList:   "list",
	KindTuple:  "tuple",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is one decoded argument. Items holds list and tuple elements; Label is
// set when the value was written as `label: value`.
type Value struct {
	Kind   Kind
	Bool   bool
	Number float64
	Text   string
	Items  []Value
	Label  string
	Offset int
}

// String renders v back in wire form.
func (v Value) String() string {
	var b strings.Builder
	v.write(&b)
	return b.String()
}

func (v Value) write(b *strings.Builder) {
	if v.Label != "" {
		b.WriteString(v.Label)
		b.WriteString(": ")
	}
	switch v.Kind {
	case KindNil:
		b.WriteString("nil")
	case KindBool:
		b.WriteString(strconv.FormatBool(v.Bool))
	case KindNumber:
		b.WriteString(strconv.FormatFloat(v.Number, 'g', -1, 64))
	case KindString:
		b.WriteString(strconv.Quote(v.Text))
	case KindAtom:
		b.WriteString(":" + v.Text)
	case KindMember:
		b.WriteString("." + v.Text)
	case KindList, KindTuple:
		open, close := "[", "]"
		if v.Kind == KindTuple {
			open, close = "{", "}"
		}
		b.WriteString(open)
		for i, item := range v.Items {
			if i > 0 {
				b.WriteString(", ")
			}
			item.write(b)
		}
		b.WriteString(close)
	}
}

// ReadValue decodes one value from in.
func ReadValue(in *Input) (Value, error) {
	in.skipSpace()
	start := in.pos
	c := in.peek()
	switch {
	case c == 0:
		return Value{}, in.errorf("expected value, found end of input")
	case c == '"':
		s, err := in.readString()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindString, Text: s, Offset: start}, nil
	case c == '[':
		items, err := in.readItems('[', ']')
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindList, Items: items, Offset: start}, nil
	case c == '{':
		items, err := in.readItems('{', '}')
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindTuple, Items: items, Offset: start}, nil
	case c == ':':
		in.pos++
		name, err := in.readAtomName()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindAtom, Text: name, Offset: start}, nil
	case c == '.' && isIdentStart(in.peekAt(1)):
		in.pos++
		name, _ := in.readIdent()
		return Value{Kind: KindMember, Text: name, Offset: start}, nil
	case c == '-' || c == '+' || (c >= '0' && c <= '9'):
		n, err := in.readNumber()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindNumber, Number: n, Offset: start}, nil
	case isIdentStart(c):
		name, _ := in.readIdent()
		switch name {
		case "true", "false":
			return Value{Kind: KindBool, Bool: name == "true", Offset: start}, nil
		case "nil":
			return Value{Kind: KindNil, Offset: start}, nil
		}
		return Value{Kind: KindAtom, Text: name, Offset: start}, nil
	}
	return Value{}, in.errorf("unexpected %s", in.describe())
}

// readItem reads a possibly labelled value inside a list or tuple.
func (in *Input) readItem() (Value, error) {
	in.skipSpace()
	mark := in.pos
	if name, ok := in.readIdent(); ok && in.peek() == ':' && in.peekAt(1) != ':' {
		in.pos++
		v, err := ReadValue(in)
		if err != nil {
			return Value{}, err
		}
		v.Label = name
		return v, nil
	}
	in.pos = mark
	return ReadValue(in)
}

func (in *Input) readItems(open, close byte) ([]Value, error) {
	if err := in.expect(open); err != nil {
		return nil, err
	}
	var items []Value
	in.skipSpace()
	if in.peek() == close {
		in.pos++
		return items, nil
	}
	for {
		item, err := in.readItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		in.skipSpace()
		switch in.peek() {
		case ',':
			in.pos++
		case close:
			in.pos++
			return items, nil
		default:
			return nil, in.errorf("expected ',' or %q, found %s", close, in.describe())
		}
	}
}

func (in *Input) readAtomName() (string, error) {
	if in.peek() == '"' {
		return in.readString()
	}
	name, ok := in.readIdent()
	if !ok {
		return "", in.errorf("expected atom name, found %s", in.describe())
	}
	return name, nil
}

func (in *Input) readString() (string, error) {
	start := in.pos
	in.pos++ // opening quote
	var b strings.Builder
	for in.pos < len(in.src) {
		c := in.src[in.pos]
		switch c {
		case '"':
			in.pos++
			return b.String(), nil
		case '\\':
			in.pos++
			if in.pos >= len(in.src) {
				break
			}
			switch e := in.src[in.pos]; e {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			default:
				b.WriteByte(e)
			}
			in.pos++
		default:
			b.WriteByte(c)
			in.pos++
		}
	}
	return "", &SyntaxError{Offset: start, Msg: "unterminated string"}
}

func (in *Input) readNumber() (float64, error) {
	start := in.pos
	if c := in.peek(); c == '-' || c == '+' {
		in.pos++
	}
	for in.pos < len(in.src) {
		c := in.src[in.pos]
		if (c >= '0' && c <= '9') || c == '.' || c == '_' || c == 'e' || c == 'E' {
			in.pos++
			continue
		}
		if (c == '-' || c == '+') && (in.src[in.pos-1] == 'e' || in.src[in.pos-1] == 'E') {
			in.pos++
			continue
		}
		break
	}
	text := strings.ReplaceAll(string(in.src[start:in.pos]), "_", "")
	n, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, &SyntaxError{Offset: start, Msg: "invalid number " + strconv.Quote(text)}
	}
	return n, nil
}
