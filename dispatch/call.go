package dispatch

import (
	"fmt"
)

// Metadata is the source position attached to every serialized call.
type Metadata struct {
	File   string
	Line   int
	Column int
	Module string
	Source string
}

func (m Metadata) String() string {
	switch {
	case m.File != "" && m.Line > 0:
		return fmt.Sprintf("%s:%d:%d", m.File, m.Line, m.Column)
	case m.Line > 0:
		return fmt.Sprintf("line %d, column %d", m.Line, m.Column)
	default:
		return "unknown location"
	}
}

// Call is one decoded modifier call:
//
//	{:name, [line: 1, column: 4], [positional, label: value]}
//
// The argument list is optional.
type Call struct {
	Name     string
	Metadata Metadata
	Args     []Value
	Offset   int
}

// ReadCall consumes one modifier call from in.
func ReadCall(in *Input) (*Call, error) {
	in.skipSpace()
	start := in.pos
	name, meta, err := readHead(in)
	if err != nil {
		return nil, err
	}
	call := &Call{Name: name, Metadata: meta, Offset: start}

	in.skipSpace()
	if in.peek() == ',' {
		in.pos++
		args, err := ReadValue(in)
		if err != nil {
			return nil, err
		}
		if args.Kind != KindList {
			return nil, &SyntaxError{Offset: args.Offset, Msg: "expected argument list, found " + args.Kind.String()}
		}
		call.Args = args.Items
	}
	if err := in.expect('}'); err != nil {
		return nil, err
	}
	return call, nil
}

// PeekHead reads the modifier name and metadata of the next call without
// consuming input.
func PeekHead(in *Input) (string, Metadata, error) {
	mark := in.Mark()
	defer in.Reset(mark)
	return readHead(in)
}

func readHead(in *Input) (string, Metadata, error) {
	if err := in.expect('{'); err != nil {
		return "", Metadata{}, err
	}
	in.skipSpace()
	if in.peek() == ':' {
		in.pos++
	}
	name, err := in.readAtomName()
	if err != nil {
		return "", Metadata{}, err
	}
	if err := in.expect(','); err != nil {
		return "", Metadata{}, err
	}
	meta, err := ReadValue(in)
	if err != nil {
		return "", Metadata{}, err
	}
	m, err := metadataFrom(meta)
	if err != nil {
		return "", Metadata{}, err
	}
	return name, m, nil
}

func metadataFrom(v Value) (Metadata, error) {
	if v.Kind != KindList {
		return Metadata{}, &SyntaxError{Offset: v.Offset, Msg: "expected metadata keyword list, found " + v.Kind.String()}
	}
	var m Metadata
	for _, item := range v.Items {
		switch item.Label {
		case "file":
			m.File = item.Text
		case "module":
			m.Module = item.Text
		case "source":
			m.Source = item.Text
		case "line":
			m.Line = int(item.Number)
		case "column":
			m.Column = int(item.Number)
		}
	}
	return m, nil
}
