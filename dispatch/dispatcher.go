package dispatch

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Modifier is a parsed, invokable modifier value.
type Modifier interface {
	Name() string
}

// Content is the host's view value that modifiers are applied to.
type Content any

// ParseFunc parses one full modifier call from in.
type ParseFunc func(in *Input, ctx *Context) (Modifier, error)

// ChunkFunc parses a call whose name belongs to one generated chunk.
type ChunkFunc func(name string, in *Input, ctx *Context) (Modifier, error)

// Extensions are the host-supplied parsers a generated dispatcher falls back
// to. Text and Image recognise generic styling calls keyed by argument shape
// rather than by name; Custom parses consumer-defined modifiers.
type Extensions struct {
	Text   ParseFunc
	Image  ParseFunc
	Custom ParseFunc
	Logger *zap.Logger
}

// Dispatcher routes a serialized modifier call to its parser.
type Dispatcher struct {
	// Chunks maps every generated modifier name to the parser of its chunk.
	Chunks map[string]ChunkFunc
	// Extras holds hand-written internal modifiers, keyed by name.
	Extras map[string]ParseFunc
	// Deprecations maps removed modifier names to a message.
	Deprecations map[string]string

	Text   ParseFunc
	Image  ParseFunc
	Custom ParseFunc

	Logger *zap.Logger
}

// NewDispatcher assembles a Dispatcher from generated tables and host
// extensions.
func NewDispatcher(chunks map[string]ChunkFunc, extras map[string]ParseFunc, deprecations map[string]string, ext Extensions) *Dispatcher {
	return &Dispatcher{
		Chunks:       chunks,
		Extras:       extras,
		Deprecations: deprecations,
		Text:         ext.Text,
		Image:        ext.Image,
		Custom:       ext.Custom,
		Logger:       ext.Logger,
	}
}

func (d *Dispatcher) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// Parse reads one modifier call. The order of attempts is fixed:
//
//  1. peek the name and metadata without consuming input;
//  2. a generated or extra parser registered under the name;
//  3. otherwise a deprecated-modifier error if the name is deprecated;
//  4. otherwise an unknown-modifier error;
//  5. on any failure of 2-4, rewind and try the text, then the image parser;
//  6. then rewind and try the custom parser. A ModifierParseError from it is
//     replaced by the deprecated-modifier error when the name is deprecated
//     and returned unchanged otherwise;
//  7. any other custom failure yields the error from 2-4.
func (d *Dispatcher) Parse(in *Input, ctx *Context) (Modifier, error) {
	start := in.Mark()
	name, meta, err := PeekHead(in)
	if err != nil {
		return nil, err
	}

	mod, builtinErr := d.parseBuiltin(name, meta, in, ctx)
	if builtinErr == nil {
		return mod, nil
	}
	log := d.logger().With(zap.String("modifier", name), zap.Stringer("at", meta))
	log.Debug("builtin parse failed", zap.Error(builtinErr))

	for _, fallback := range []ParseFunc{d.Text, d.Image} {
		if fallback == nil {
			continue
		}
		in.Reset(start)
		if mod, err := fallback(in, ctx); err == nil {
			return mod, nil
		}
	}

	in.Reset(start)
	customErr := ErrNoCustomModifiers
	if d.Custom != nil {
		mod, customErr = d.Custom(in, ctx)
		if customErr == nil {
			return mod, nil
		}
	}
	in.Reset(start)
	log.Debug("custom parse failed", zap.Error(customErr))

	var structured *ModifierParseError
	if errors.As(customErr, &structured) {
		if message, ok := d.Deprecations[name]; ok {
			return nil, NewDeprecatedModifier(name, message, meta)
		}
		return nil, customErr
	}
	return nil, builtinErr
}

func (d *Dispatcher) parseBuiltin(name string, meta Metadata, in *Input, ctx *Context) (Modifier, error) {
	if chunk, ok := d.Chunks[name]; ok {
		return chunk(name, in, ctx)
	}
	if parse, ok := d.Extras[name]; ok {
		return parse(in, ctx)
	}
	if message, ok := d.Deprecations[name]; ok {
		return nil, NewDeprecatedModifier(name, message, meta)
	}
	return nil, NewUnknownModifier(name, meta)
}

// ParseAll reads modifier calls until the input is exhausted. Calls may be
// separated by commas and wrapped in a list.
func (d *Dispatcher) ParseAll(in *Input, ctx *Context) ([]Modifier, error) {
	in.skipSpace()
	list := in.peek() == '['
	if list {
		in.pos++
	}
	var mods []Modifier
	for {
		in.skipSpace()
		if list && in.peek() == ']' {
			in.pos++
			break
		}
		if in.EOF() {
			if list {
				return nil, in.errorf("unterminated modifier list")
			}
			break
		}
		mod, err := d.Parse(in, ctx)
		if err != nil {
			return nil, err
		}
		mods = append(mods, mod)
		in.skipSpace()
		if in.peek() == ',' {
			in.pos++
		}
	}
	return mods, nil
}
