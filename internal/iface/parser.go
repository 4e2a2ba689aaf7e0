package iface

import (
	"fmt"
	"strings"
)

var declModifiers = map[string]bool{
	"public": true, "private": true, "fileprivate": true, "internal": true,
	"open": true, "package": true, "static": true, "final": true,
	"override": true, "mutating": true, "nonmutating": true,
	"convenience": true, "required": true, "optional": true, "dynamic": true,
	"lazy": true, "weak": true, "unowned": true, "indirect": true,
	"nonisolated": true, "isolated": true, "prefix": true, "postfix": true,
	"infix": true, "distributed": true, "consuming": true, "borrowing": true,
	"__consuming": true, "__owned": true, "__shared": true,
}

// typeSpecifiers precede a type without changing its shape for our purposes.
var typeSpecifiers = map[string]bool{
	"__owned": true, "__shared": true, "borrowing": true, "consuming": true,
	"sending": true, "isolated": true, "each": true, "repeat": true,
}

type parser struct {
	toks []Token
	pos  int
}

// Parse parses interface text into a File. Any lexical or syntactic problem
// is returned as a *SyntaxError; there is no partial result.
func Parse(src string) (*File, error) {
	toks, err := Lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	decls, err := p.parseDecls(false)
	if err != nil {
		return nil, err
	}
	return &File{Decls: decls}, nil
}

// ParseType parses a standalone type annotation such as
// "AttributeReference<CGFloat>".
func ParseType(src string) (*Type, error) {
	toks, err := Lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Kind != EOF {
		return nil, p.errorf(tok, "unexpected %s after type", tok)
	}
	return t, nil
}

func (p *parser) peek() Token { return p.peekAt(0) }

func (p *parser) peekAt(n int) Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *parser) next() Token {
	t := p.peek()
	if t.Kind != EOF {
		p.pos++
	}
	return t
}

func (p *parser) prev() Token {
	if p.pos == 0 {
		return Token{}
	}
	return p.toks[p.pos-1]
}

// at reports whether the next token is a non-string token spelled text.
func (p *parser) at(text string) bool {
	t := p.peek()
	return t.Kind != String && t.Kind != EOF && t.Text == text
}

func (p *parser) accept(text string) bool {
	if p.at(text) {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expect(text string) (Token, error) {
	if !p.at(text) {
		return Token{}, p.errorf(p.peek(), "expected %q, found %s", text, p.peek())
	}
	return p.next(), nil
}

func (p *parser) ident() (Token, error) {
	t := p.peek()
	if t.Kind != Ident {
		return Token{}, p.errorf(t, "expected identifier, found %s", t)
	}
	return p.next(), nil
}

// adjacent reports whether the next token directly follows the previous one.
func (p *parser) adjacent() bool {
	return p.pos > 0 && p.peek().Offset == p.prev().End
}

// newLine reports whether the next token starts a new source line.
func (p *parser) newLine() bool {
	return p.pos > 0 && p.peek().Line > p.prev().Line
}

func (p *parser) errorf(t Token, format string, args ...any) error {
	return &SyntaxError{Line: t.Line, Col: t.Col, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) parseDecls(inBody bool) ([]*Decl, error) {
	var decls []*Decl
	for {
		for p.accept(";") {
		}
		t := p.peek()
		if t.Kind == EOF {
			if inBody {
				return nil, p.errorf(t, "expected '}' before end of file")
			}
			return decls, nil
		}
		if inBody && p.accept("}") {
			return decls, nil
		}
		d, err := p.parseDecl()
		if err != nil {
			return nil, err
		}
		decls = append(decls, d)
	}
}

func (p *parser) parseDecl() (*Decl, error) {
	d := &Decl{}
	for {
		if p.at("@") {
			a, err := p.parseAttribute()
			if err != nil {
				return nil, err
			}
			d.Attributes = append(d.Attributes, a)
			continue
		}
		if !p.isModifier() {
			break
		}
		d.Modifiers = append(d.Modifiers, p.next().Text)
		if p.at("(") && p.adjacent() {
			if err := p.skipBalanced("(", ")"); err != nil {
				return nil, err
			}
		}
	}

	kw := p.peek()
	kind, ok := declKeywords[kw.Text]
	if kw.Kind != Ident || !ok {
		return nil, p.errorf(kw, "expected declaration, found %s", kw)
	}
	p.next()
	d.Kind = kind
	d.Line = kw.Line

	var err error
	switch kind {
	case ImportDecl:
		err = p.parseImport(d)
	case ExtensionDecl:
		err = p.parseExtension(d)
	case StructDecl, EnumDecl, ClassDecl, ProtocolDecl, ActorDecl:
		err = p.parseNominal(d)
	case FuncDecl, MacroDecl:
		err = p.parseFunc(d)
	case InitDecl:
		err = p.parseInit(d)
	case SubscriptDecl:
		err = p.parseSubscript(d)
	case VarDecl:
		err = p.parseVar(d)
	case CaseDecl:
		err = p.parseCase(d)
	case TypealiasDecl:
		err = p.parseTypealias(d)
	case AssociatedTypeDecl:
		err = p.parseAssociatedType(d)
	case OperatorDecl:
		err = p.parseOperator(d)
	case PrecedenceGroupDecl:
		err = p.parsePrecedenceGroup(d)
	case DeinitDecl:
		err = p.skipBody()
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// isModifier distinguishes `class func` (modifier) from `class Foo`.
func (p *parser) isModifier() bool {
	t := p.peek()
	if t.Kind != Ident {
		return false
	}
	if t.Text == "class" {
		n := p.peekAt(1)
		if n.Kind != Ident {
			return false
		}
		k, isDecl := declKeywords[n.Text]
		return declModifiers[n.Text] || (isDecl && k >= FuncDecl)
	}
	if !declModifiers[t.Text] {
		return false
	}
	// Modifier words are also valid names: `case optional`.
	n := p.peekAt(1)
	return n.Kind == Ident || n.Text == "@" || (n.Text == "(" && n.Offset == t.End)
}

func (p *parser) parseAttribute() (Attribute, error) {
	if _, err := p.expect("@"); err != nil {
		return Attribute{}, err
	}
	name, err := p.ident()
	if err != nil {
		return Attribute{}, err
	}
	parts := []string{name.Text}
	for p.at(".") && p.adjacent() && p.peekAt(1).Kind == Ident {
		p.next()
		parts = append(parts, p.next().Text)
	}
	a := Attribute{Name: strings.Join(parts, ".")}
	if p.at("(") && p.adjacent() {
		start := p.pos + 1
		if err := p.skipBalanced("(", ")"); err != nil {
			return Attribute{}, err
		}
		a.Args = p.toks[start : p.pos-1]
	}
	return a, nil
}

// skipBalanced consumes a bracketed group starting at open, counting every
// bracket kind so that mixed nesting stays aligned.
func (p *parser) skipBalanced(open, close string) error {
	start, err := p.expect(open)
	if err != nil {
		return err
	}
	depth := 1
	for depth > 0 {
		t := p.next()
		if t.Kind == EOF {
			return p.errorf(start, "unbalanced %q", open)
		}
		if t.Kind != Punct {
			continue
		}
		switch t.Text {
		case "(", "[", "{":
			depth++
		case ")", "]", "}":
			depth--
		}
	}
	if p.prev().Text != close {
		return p.errorf(p.prev(), "expected %q, found %s", close, p.prev())
	}
	return nil
}

// skipAngles consumes a generic parameter clause.
func (p *parser) skipAngles() error {
	start, err := p.expect("<")
	if err != nil {
		return err
	}
	depth := 1
	for depth > 0 {
		t := p.next()
		switch {
		case t.Kind == EOF:
			return p.errorf(start, "unterminated generic parameter clause")
		case t.Kind != Punct:
		case t.Text == "<":
			depth++
		case t.Text == ">":
			depth--
		}
	}
	return nil
}

func (p *parser) skipBody() error {
	if p.at("{") {
		return p.skipBalanced("{", "}")
	}
	return nil
}

func (p *parser) parseImport(d *Decl) error {
	if t := p.peek(); t.Kind == Ident && p.peekAt(1).Kind == Ident {
		if _, ok := declKeywords[t.Text]; ok {
			p.next()
		}
	}
	name, err := p.ident()
	if err != nil {
		return err
	}
	parts := []string{name.Text}
	for p.at(".") {
		p.next()
		part, err := p.ident()
		if err != nil {
			return err
		}
		parts = append(parts, part.Text)
	}
	d.Name = strings.Join(parts, ".")
	return nil
}

func (p *parser) parseExtension(d *Decl) error {
	t, err := p.parseType()
	if err != nil {
		return err
	}
	d.Extended = t
	d.Name = t.Path()
	return p.parseTypeTail(d)
}

func (p *parser) parseNominal(d *Decl) error {
	name, err := p.ident()
	if err != nil {
		return err
	}
	d.Name = name.Text
	if p.at("<") {
		if err := p.skipAngles(); err != nil {
			return err
		}
	}
	return p.parseTypeTail(d)
}

// parseTypeTail parses the inheritance clause, where clause and member block
// shared by type declarations and extensions.
func (p *parser) parseTypeTail(d *Decl) error {
	var err error
	if p.accept(":") {
		for {
			t, err := p.parseType()
			if err != nil {
				return err
			}
			d.Inherits = append(d.Inherits, t)
			if !p.accept(",") {
				break
			}
		}
	}
	if d.Where, err = p.parseWhere(); err != nil {
		return err
	}
	if _, err := p.expect("{"); err != nil {
		return err
	}
	d.Members, err = p.parseDecls(true)
	return err
}

func (p *parser) parseWhere() ([]Requirement, error) {
	if !p.accept("where") {
		return nil, nil
	}
	var reqs []Requirement
	for {
		subject, err := p.parseType()
		if err != nil {
			return nil, err
		}
		var req Requirement
		switch {
		case p.accept(":"):
		case p.at("=="):
			p.next()
			req.SameType = true
		default:
			return nil, p.errorf(p.peek(), "expected ':' or '==' in where clause, found %s", p.peek())
		}
		constraint, err := p.parseType()
		if err != nil {
			return nil, err
		}
		req.Subject, req.Constraint = subject, constraint
		reqs = append(reqs, req)
		if !p.accept(",") {
			return reqs, nil
		}
	}
}

func (p *parser) parseFunc(d *Decl) error {
	name, err := p.funcName()
	if err != nil {
		return err
	}
	d.Name = name
	if p.at("<") {
		if err := p.skipAngles(); err != nil {
			return err
		}
	}
	if d.Params, err = p.parseParams(false); err != nil {
		return err
	}
	if err := p.parseEffects(); err != nil {
		return err
	}
	if p.accept("->") {
		if d.Result, err = p.parseType(); err != nil {
			return err
		}
	}
	if d.Kind == MacroDecl && p.at("=") {
		p.next()
		p.skipInitializer()
	}
	if d.Where, err = p.parseWhere(); err != nil {
		return err
	}
	return p.skipBody()
}

// funcName reads an identifier or an operator name such as `==` or `..<`.
func (p *parser) funcName() (string, error) {
	t := p.peek()
	if t.Kind == Ident {
		p.next()
		return t.Text, nil
	}
	if (t.Kind != Operator && t.Kind != Punct) || t.Text == "(" {
		return "", p.errorf(t, "expected function name, found %s", t)
	}
	name := p.next().Text
	for p.adjacent() && !p.at("(") && (p.peek().Kind == Operator || p.peek().Kind == Punct) {
		name += p.next().Text
	}
	return name, nil
}

func (p *parser) parseEffects() error {
	for {
		switch {
		case p.accept("async"), p.accept("reasync"), p.accept("rethrows"):
		case p.accept("throws"):
			if p.at("(") && p.adjacent() {
				if err := p.skipBalanced("(", ")"); err != nil {
					return err
				}
			}
		default:
			return nil
		}
	}
}

func (p *parser) parseInit(d *Decl) error {
	d.Name = "init"
	if (p.at("?") || p.at("!")) && p.adjacent() {
		p.next()
	}
	if p.at("<") {
		if err := p.skipAngles(); err != nil {
			return err
		}
	}
	var err error
	if d.Params, err = p.parseParams(false); err != nil {
		return err
	}
	if err := p.parseEffects(); err != nil {
		return err
	}
	if d.Where, err = p.parseWhere(); err != nil {
		return err
	}
	return p.skipBody()
}

func (p *parser) parseSubscript(d *Decl) error {
	d.Name = "subscript"
	if p.at("<") {
		if err := p.skipAngles(); err != nil {
			return err
		}
	}
	var err error
	if d.Params, err = p.parseParams(false); err != nil {
		return err
	}
	if _, err := p.expect("->"); err != nil {
		return err
	}
	if d.Result, err = p.parseType(); err != nil {
		return err
	}
	if d.Where, err = p.parseWhere(); err != nil {
		return err
	}
	return p.skipBody()
}

func (p *parser) parseVar(d *Decl) error {
	if p.at("(") {
		if err := p.skipBalanced("(", ")"); err != nil {
			return err
		}
	} else {
		name, err := p.ident()
		if err != nil {
			return err
		}
		d.Name = name.Text
	}
	if p.accept(":") {
		t, err := p.parseType()
		if err != nil {
			return err
		}
		d.VarType = t
	}
	if p.accept("=") {
		p.skipInitializer()
	}
	return p.skipBody()
}

// skipInitializer consumes an expression up to the end of its line. A line
// starting with '.' continues the expression.
func (p *parser) skipInitializer() {
	depth := 0
	for {
		t := p.peek()
		if t.Kind == EOF {
			return
		}
		if depth == 0 {
			if t.Kind == Punct && (t.Text == ";" || t.Text == "}" || t.Text == ",") {
				return
			}
			if p.newLine() && t.Text != "." {
				return
			}
		}
		if t.Kind == Punct {
			switch t.Text {
			case "(", "[", "{":
				depth++
			case ")", "]", "}":
				depth--
			}
		}
		p.next()
	}
}

func (p *parser) parseCase(d *Decl) error {
	for {
		name, err := p.ident()
		if err != nil {
			return err
		}
		c := EnumCase{Name: name.Text}
		if p.at("(") {
			if c.Params, err = p.parseParams(true); err != nil {
				return err
			}
		}
		if p.accept("=") {
			p.skipInitializer()
		}
		d.Cases = append(d.Cases, c)
		if !p.accept(",") {
			break
		}
	}
	d.Name = d.Cases[0].Name
	return nil
}

func (p *parser) parseTypealias(d *Decl) error {
	name, err := p.ident()
	if err != nil {
		return err
	}
	d.Name = name.Text
	if p.at("<") {
		if err := p.skipAngles(); err != nil {
			return err
		}
	}
	if _, err := p.expect("="); err != nil {
		return err
	}
	if d.VarType, err = p.parseType(); err != nil {
		return err
	}
	d.Where, err = p.parseWhere()
	return err
}

func (p *parser) parseAssociatedType(d *Decl) error {
	name, err := p.ident()
	if err != nil {
		return err
	}
	d.Name = name.Text
	if p.accept(":") {
		for {
			t, err := p.parseType()
			if err != nil {
				return err
			}
			d.Inherits = append(d.Inherits, t)
			if !p.accept(",") {
				break
			}
		}
	}
	if p.accept("=") {
		if d.VarType, err = p.parseType(); err != nil {
			return err
		}
	}
	d.Where, err = p.parseWhere()
	return err
}

// parseOperator reads `infix operator <> : Group`; everything after the
// keyword stays on one line.
func (p *parser) parseOperator(d *Decl) error {
	kw := p.prev()
	var name strings.Builder
	for p.peek().Kind != EOF && p.peek().Line == kw.Line && !p.at(":") && !p.at(";") {
		name.WriteString(p.next().Text)
	}
	if name.Len() == 0 {
		return p.errorf(p.peek(), "expected operator name, found %s", p.peek())
	}
	d.Name = name.String()
	if p.accept(":") {
		if _, err := p.ident(); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) parsePrecedenceGroup(d *Decl) error {
	name, err := p.ident()
	if err != nil {
		return err
	}
	d.Name = name.Text
	return p.skipBalanced("{", "}")
}

// parseParams parses a parenthesized parameter list. When unlabeled is set
// (enum case payloads) elements may be bare types.
func (p *parser) parseParams(unlabeled bool) ([]Param, error) {
	if _, err := p.expect("("); err != nil {
		return nil, err
	}
	var params []Param
	for !p.accept(")") {
		param, err := p.parseParam(unlabeled)
		if err != nil {
			return nil, err
		}
		params = append(params, param)
		if !p.accept(",") {
			if _, err := p.expect(")"); err != nil {
				return nil, err
			}
			break
		}
	}
	return params, nil
}

func (p *parser) parseParam(unlabeled bool) (Param, error) {
	var param Param
	for p.at("@") {
		a, err := p.parseAttribute()
		if err != nil {
			return Param{}, err
		}
		param.Attributes = append(param.Attributes, a)
	}
	labelled := p.peek().Kind == Ident &&
		(p.peekAt(1).Text == ":" || (p.peekAt(1).Kind == Ident && p.peekAt(2).Text == ":"))
	if labelled {
		param.FirstName = p.next().Text
		if p.peek().Kind == Ident {
			param.SecondName = p.next().Text
		}
		p.next()
	} else if !unlabeled {
		return Param{}, p.errorf(p.peek(), "expected parameter name, found %s", p.peek())
	}
	t, err := p.parseType()
	if err != nil {
		return Param{}, err
	}
	param.Type = t
	if p.accept("=") {
		param.HasDefault = true
		p.skipDefault()
	}
	return param, nil
}

// skipDefault consumes a default argument value up to ',' or ')'.
func (p *parser) skipDefault() {
	depth := 0
	for {
		t := p.peek()
		if t.Kind == EOF {
			return
		}
		if t.Kind == Punct {
			switch t.Text {
			case "(", "[", "{":
				depth++
			case ")", "]", "}":
				if depth == 0 {
					return
				}
				depth--
			case ",":
				if depth == 0 {
					return
				}
			}
		}
		p.next()
	}
}

func (p *parser) parseType() (*Type, error) {
	var attrs []Attribute
	for p.at("@") {
		a, err := p.parseAttribute()
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, a)
	}
	for p.peek().Kind == Ident && typeSpecifiers[p.peek().Text] {
		if n := p.peekAt(1); n.Kind != Ident && n.Text != "(" && n.Text != "[" {
			break
		}
		p.next()
	}

	var t *Type
	var err error
	switch {
	case p.accept("inout"):
		var base *Type
		if base, err = p.parseType(); err == nil {
			t = &Type{Kind: InOutType, Base: base}
		}
	case p.at("some") && p.peekAt(1).Kind == Ident, p.at("any") && p.peekAt(1).Kind != Punct:
		kind := OpaqueType
		if p.next().Text == "any" {
			kind = ExistentialType
		}
		var base *Type
		if base, err = p.parseComposition(); err == nil {
			t = &Type{Kind: kind, Base: base}
		}
	default:
		t, err = p.parseComposition()
	}
	if err != nil {
		return nil, err
	}
	if len(attrs) > 0 {
		t = &Type{Kind: AttributedType, Attributes: attrs, Base: t}
	}
	return t, nil
}

func (p *parser) parseComposition() (*Type, error) {
	t, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	if !p.at("&") {
		return t, nil
	}
	comp := &Type{Kind: CompositionType, Args: []*Type{t}}
	for p.accept("&") {
		next, err := p.parsePostfix()
		if err != nil {
			return nil, err
		}
		comp.Args = append(comp.Args, next)
	}
	return comp, nil
}

func (p *parser) parsePostfix() (*Type, error) {
	t, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.at("?") && p.adjacent():
			p.next()
			t = &Type{Kind: OptionalType, Base: t}
		case p.at("!") && p.adjacent():
			p.next()
			t = &Type{Kind: ImplicitOptionalType, Base: t}
		case p.at("..."):
			p.next()
			t = &Type{Kind: VariadicType, Base: t}
		case p.at(".") && p.peekAt(1).Kind == Ident:
			p.next()
			name := p.next().Text
			if name == "Type" || name == "Protocol" {
				t = &Type{Kind: MetatypeType, Base: t, Name: name}
				continue
			}
			m := &Type{Kind: MemberType, Base: t, Name: name}
			if p.at("<") {
				if m.Args, err = p.parseGenericArgs(); err != nil {
					return nil, err
				}
			}
			t = m
		default:
			return t, nil
		}
	}
}

func (p *parser) parsePrimary() (*Type, error) {
	t := p.peek()
	switch {
	case t.Kind == Operator && t.Text == "~":
		p.next()
		base, err := p.parsePostfix()
		if err != nil {
			return nil, err
		}
		return &Type{Kind: SuppressedType, Base: base}, nil
	case t.Kind == Ident:
		p.next()
		named := &Type{Kind: NamedType, Name: t.Text}
		if p.at("<") {
			var err error
			if named.Args, err = p.parseGenericArgs(); err != nil {
				return nil, err
			}
		}
		return named, nil
	case p.at("("):
		return p.parseTupleOrFunction()
	case p.at("["):
		p.next()
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if p.accept(":") {
			value, err := p.parseType()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect("]"); err != nil {
				return nil, err
			}
			return &Type{Kind: DictionaryType, Args: []*Type{elem, value}}, nil
		}
		if _, err := p.expect("]"); err != nil {
			return nil, err
		}
		return &Type{Kind: ArrayType, Base: elem}, nil
	}
	return nil, p.errorf(t, "expected type, found %s", t)
}

func (p *parser) parseGenericArgs() ([]*Type, error) {
	if _, err := p.expect("<"); err != nil {
		return nil, err
	}
	var args []*Type
	for {
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		args = append(args, t)
		if !p.accept(",") {
			break
		}
	}
	if _, err := p.expect(">"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *parser) parseTupleOrFunction() (*Type, error) {
	params, err := p.parseParams(true)
	if err != nil {
		return nil, err
	}
	elems := make([]*Type, len(params))
	labels := make([]string, len(params))
	hasLabels := false
	for i, param := range params {
		elems[i] = param.Type
		labels[i] = param.FirstName
		if param.SecondName != "" {
			labels[i] = param.SecondName
		}
		hasLabels = hasLabels || labels[i] != ""
	}
	if !hasLabels {
		labels = nil
	}

	fn := &Type{Kind: FunctionType, Args: elems, Labels: labels}
	isFunc := false
	for {
		switch {
		case p.accept("async"):
			fn.Async, isFunc = true, true
			continue
		case p.accept("throws"), p.accept("rethrows"):
			fn.Throws, isFunc = true, true
			if p.at("(") && p.adjacent() {
				if err := p.skipBalanced("(", ")"); err != nil {
					return nil, err
				}
			}
			continue
		}
		break
	}
	if p.accept("->") {
		if fn.Result, err = p.parseType(); err != nil {
			return nil, err
		}
		return fn, nil
	}
	if isFunc {
		return nil, p.errorf(p.peek(), "expected '->' in function type, found %s", p.peek())
	}
	if len(elems) == 1 && labels == nil {
		return elems[0], nil
	}
	return &Type{Kind: TupleType, Args: elems, Labels: labels}, nil
}
