package dispatch

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fadeModifier struct {
	Amount float64
}

func (fadeModifier) Name() string { return "fade" }

type styleModifier struct{ kind string }

func (m styleModifier) Name() string { return m.kind }

func parseFade(in *Input, ctx *Context) (Modifier, error) {
	call, err := ReadCall(in)
	if err != nil {
		return nil, err
	}
	return Overload(call, ctx, func(c *Call, ctx *Context) (Modifier, error) {
		b := NewBinder(c)
		amount, err := Bind(b, "amount", false, Float, ctx)
		if err != nil {
			return nil, err
		}
		if err := b.Done(); err != nil {
			return nil, err
		}
		return fadeModifier{Amount: amount}, nil
	})
}

func failing(err error) ParseFunc {
	return func(*Input, *Context) (Modifier, error) { return nil, err }
}

func newTestDispatcher(custom ParseFunc) *Dispatcher {
	return NewDispatcher(
		map[string]ChunkFunc{
			"fade": func(name string, in *Input, ctx *Context) (Modifier, error) {
				return parseFade(in, ctx)
			},
		},
		nil,
		map[string]string{"blink": "use fade instead"},
		Extensions{
			Text:   failing(errors.New("not a text modifier")),
			Image:  failing(errors.New("not an image modifier")),
			Custom: custom,
		},
	)
}

func TestDispatchKnownModifier(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(failing(errors.New("no custom modifiers")))
	in := NewInput(`{:fade, [line: 1, column: 2], [amount: 0.5]}`)

	mod, err := d.Parse(in, nil)
	require.NoError(t, err)
	assert.Equal(t, fadeModifier{Amount: 0.5}, mod)
	assert.True(t, in.EOF(), "input should be consumed")
}

func TestDispatchDeprecatedModifier(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(failing(errors.New("no custom modifiers")))
	_, err := d.Parse(NewInput(`{:blink, [line: 3, column: 1]}`), nil)
	require.Error(t, err)

	var pe *ModifierParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, DeprecatedModifier, pe.Kind)
	assert.Equal(t, "blink", pe.Name)
	assert.Equal(t, "use fade instead", pe.Message)
	assert.Equal(t, 3, pe.Metadata.Line)
}

func TestDispatchUnknownModifier(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(failing(errors.New("no custom modifiers")))
	_, err := d.Parse(NewInput(`{glow, [line: 1]}`), nil)
	require.Error(t, err)
	assert.Equal(t, UnknownModifier, KindOf(err))
}

func TestDispatchWrongTypeSurfacesOriginalError(t *testing.T) {
	t.Parallel()

	var tried []string
	record := func(name string) ParseFunc {
		return func(in *Input, _ *Context) (Modifier, error) {
			tried = append(tried, name)
			assert.Equal(t, 0, in.Offset(), "%s should see rewound input", name)
			return nil, errors.New(name + " failed")
		}
	}
	d := newTestDispatcher(record("custom"))
	d.Text = record("text")
	d.Image = record("image")

	in := NewInput(`{:fade, [line: 1], [amount: "x"]}`)
	_, err := d.Parse(in, nil)
	require.Error(t, err)

	assert.Equal(t, []string{"text", "image", "custom"}, tried)
	var pe *ModifierParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, InvalidArguments, pe.Kind)
	assert.Equal(t, "fade", pe.Name)
	assert.Contains(t, err.Error(), "amount")
	assert.NotContains(t, err.Error(), "custom failed")
	assert.Equal(t, 0, in.Offset())
}

func TestDispatchFallbackWins(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(failing(errors.New("no custom modifiers")))
	d.Image = func(in *Input, _ *Context) (Modifier, error) {
		if _, err := ReadCall(in); err != nil {
			return nil, err
		}
		return styleModifier{kind: "image"}, nil
	}

	mod, err := d.Parse(NewInput(`{:fade, [line: 1], [amount: "x"]}`), nil)
	require.NoError(t, err)
	assert.Equal(t, "image", mod.Name())
}

func TestDispatchTextBeforeImage(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(nil)
	ok := func(kind string) ParseFunc {
		return func(in *Input, _ *Context) (Modifier, error) {
			if _, err := ReadCall(in); err != nil {
				return nil, err
			}
			return styleModifier{kind: kind}, nil
		}
	}
	d.Text = ok("text")
	d.Image = ok("image")

	mod, err := d.Parse(NewInput(`{:bold, [line: 1], []}`), nil)
	require.NoError(t, err)
	assert.Equal(t, "text", mod.Name())
}

func TestDispatchCustomModifier(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(func(in *Input, _ *Context) (Modifier, error) {
		call, err := ReadCall(in)
		if err != nil {
			return nil, err
		}
		return styleModifier{kind: call.Name}, nil
	})

	mod, err := d.Parse(NewInput(`{:sparkle, [line: 1], [1]}`), nil)
	require.NoError(t, err)
	assert.Equal(t, "sparkle", mod.Name())
}

func TestDispatchStructuredCustomError(t *testing.T) {
	t.Parallel()

	customErr := &ModifierParseError{Kind: InvalidArguments, Name: "custom", Message: "bad custom"}
	d := newTestDispatcher(failing(customErr))

	t.Run("propagated for unknown names", func(t *testing.T) {
		_, err := d.Parse(NewInput(`{:glow, [line: 1]}`), nil)
		assert.Same(t, customErr, err)
	})

	t.Run("replaced for deprecated names", func(t *testing.T) {
		_, err := d.Parse(NewInput(`{:blink, [line: 1]}`), nil)
		var pe *ModifierParseError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, DeprecatedModifier, pe.Kind)
		assert.Equal(t, "use fade instead", pe.Message)
	})

	t.Run("propagated for known names with bad arguments", func(t *testing.T) {
		_, err := d.Parse(NewInput(`{:fade, [line: 1], [amount: "x"]}`), nil)
		assert.Same(t, customErr, err)
	})
}

func TestDispatchNilCustomParser(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(nil)
	_, err := d.Parse(NewInput(`{:glow, [line: 1]}`), nil)
	assert.Equal(t, UnknownModifier, KindOf(err))
}

func TestDispatchMalformedHead(t *testing.T) {
	t.Parallel()

	called := false
	d := newTestDispatcher(func(*Input, *Context) (Modifier, error) {
		called = true
		return nil, errors.New("unreachable")
	})
	_, err := d.Parse(NewInput(`{:fade [line: 1]}`), nil)

	var se *SyntaxError
	require.True(t, errors.As(err, &se))
	var mpe *ModifierParseError
	assert.False(t, errors.As(err, &mpe), "a malformed call carries no modifier kind")
	assert.False(t, called)
}

func TestDispatchExtras(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(nil)
	d.Extras = map[string]ParseFunc{
		"fill": func(in *Input, _ *Context) (Modifier, error) {
			if _, err := ReadCall(in); err != nil {
				return nil, err
			}
			return styleModifier{kind: "fill"}, nil
		},
	}
	mod, err := d.Parse(NewInput(`{:fill, [line: 1], [:red]}`), nil)
	require.NoError(t, err)
	assert.Equal(t, "fill", mod.Name())
}

func TestParseAll(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(nil)
	mods, err := d.ParseAll(NewInput(`[{:fade, [line: 1], [amount: 0.1]}, {:fade, [line: 2], [amount: 1]}]`), nil)
	require.NoError(t, err)
	assert.Equal(t, []Modifier{fadeModifier{Amount: 0.1}, fadeModifier{Amount: 1}}, mods)
}
