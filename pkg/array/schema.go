package array

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/matzehuels/masktower/pkg/errors"
	"github.com/matzehuels/masktower/pkg/feature"
)

// schemaLexer splits a label schema into literal text and {field:spec}
// placeholders. "{{" and "}}" are literal braces.
var schemaLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "Escaped", Pattern: `\{\{|\}\}`},
		{Name: "Open", Pattern: `\{`, Action: lexer.Push("Field")},
		{Name: "Text", Pattern: `[^{}]+`},
	},
	"Field": {
		{Name: "Close", Pattern: `\}`, Action: lexer.Pop()},
		{Name: "Spec", Pattern: `:[^}]*`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	},
})

type schemaAST struct {
	Parts []*schemaPart `@@*`
}

type schemaPart struct {
	Text    *string      `  @Text`
	Escaped *string      `| @Escaped`
	Field   *schemaField `| Open @@ Close`
}

type schemaField struct {
	Name string `@Ident`
	Spec string `@Spec?`
}

var schemaParser = participle.MustBuild[schemaAST](participle.Lexer(schemaLexer))

// Values are the quantities a label schema can refer to.
type Values struct {
	ID     int
	Row    int
	Col    int
	Rep    int
	Params feature.Params
}

type fieldKind int

const (
	fieldID fieldKind = iota
	fieldParam
	fieldRow
	fieldCol
	fieldRep
)

type conversion int

const (
	convAny conversion = iota
	convInt
	convFloat
	convPercent
)

type placeholder struct {
	kind  fieldKind
	index int
	verb  string
	conv  conversion
}

type segment struct {
	text  string
	field *placeholder
}

// Schema is a compiled label template. Placeholders are {id} (alias {x}),
// {p} (alias {p0}), {p1}..{pN}, {row}, {col} and {rep}, each with an
// optional format spec such as {id:03d} or {p:.1f}.
type Schema struct {
	raw      string
	segments []segment
}

// ParseSchema compiles a label template. Unknown placeholders and
// unsupported format specs are configuration errors.
func ParseSchema(s string) (*Schema, error) {
	if s == "" {
		return &Schema{}, nil
	}
	ast, err := schemaParser.ParseString("", s)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfiguration, err, "label schema %q", s)
	}

	out := &Schema{raw: s}
	for _, p := range ast.Parts {
		switch {
		case p.Text != nil:
			out.segments = append(out.segments, segment{text: *p.Text})
		case p.Escaped != nil:
			out.segments = append(out.segments, segment{text: (*p.Escaped)[:1]})
		case p.Field != nil:
			ph, err := compileField(p.Field)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeConfiguration, err, "label schema %q", s)
			}
			out.segments = append(out.segments, segment{field: ph})
		}
	}
	return out, nil
}

// MustParseSchema is like ParseSchema but panics on error.
func MustParseSchema(s string) *Schema {
	sc, err := ParseSchema(s)
	if err != nil {
		panic(err)
	}
	return sc
}

func (s *Schema) String() string { return s.raw }

// UsesParams reports the highest parameter index referenced, or -1.
func (s *Schema) UsesParams() int {
	n := -1
	for _, seg := range s.segments {
		if seg.field != nil && seg.field.kind == fieldParam && seg.field.index > n {
			n = seg.field.index
		}
	}
	return n
}

// Format renders the schema for v.
func (s *Schema) Format(v Values) (string, error) {
	var b strings.Builder
	for _, seg := range s.segments {
		if seg.field == nil {
			b.WriteString(seg.text)
			continue
		}
		val, err := seg.field.value(v)
		if err != nil {
			return "", err
		}
		text, err := seg.field.render(val)
		if err != nil {
			return "", err
		}
		b.WriteString(text)
	}
	return b.String(), nil
}

func compileField(f *schemaField) (*placeholder, error) {
	ph := &placeholder{}
	switch name := f.Name; {
	case name == "id" || name == "x":
		ph.kind = fieldID
	case name == "row":
		ph.kind = fieldRow
	case name == "col":
		ph.kind = fieldCol
	case name == "rep":
		ph.kind = fieldRep
	case name == "p":
		ph.kind = fieldParam
	case strings.HasPrefix(name, "p"):
		i, err := strconv.Atoi(name[1:])
		if err != nil || i < 0 {
			return nil, fmt.Errorf("unknown placeholder {%s}", name)
		}
		ph.kind, ph.index = fieldParam, i
	default:
		return nil, fmt.Errorf("unknown placeholder {%s}", name)
	}

	verb, conv, err := translateSpec(strings.TrimPrefix(f.Spec, ":"))
	if err != nil {
		return nil, err
	}
	ph.verb, ph.conv = verb, conv
	return ph, nil
}

func (ph *placeholder) value(v Values) (any, error) {
	switch ph.kind {
	case fieldID:
		return v.ID, nil
	case fieldRow:
		return v.Row, nil
	case fieldCol:
		return v.Col, nil
	case fieldRep:
		return v.Rep, nil
	default:
		if ph.index >= len(v.Params) {
			return nil, errors.New(errors.ErrCodeConfiguration, "label refers to parameter %d but only %d given", ph.index, len(v.Params))
		}
		return v.Params[ph.index], nil
	}
}

func (ph *placeholder) render(val any) (string, error) {
	switch ph.conv {
	case convInt:
		n, ok := asInt(val)
		if !ok {
			return "", errors.New(errors.ErrCodeInvalidInput, "label value %v is not an integer", val)
		}
		return fmt.Sprintf(ph.verb, n), nil
	case convFloat, convPercent:
		f, err := feature.Params{val}.Float(0)
		if err != nil {
			return "", err
		}
		if ph.conv == convPercent {
			f *= 100
		}
		return fmt.Sprintf(ph.verb, f), nil
	default:
		return fmt.Sprintf(ph.verb, val), nil
	}
}

func asInt(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int64:
		return x, true
	case float64:
		if x == float64(int64(x)) {
			return int64(x), true
		}
	}
	return 0, false
}

// fieldSpec matches the replacement-field format specs that have
// a printf equivalent: [[fill]align][sign][#][0][width][.precision][type].
var fieldSpec = regexp.MustCompile(`^(?:([^{}]?)([<>^=]))?([+\- ])?(#)?(0)?(\d+)?(?:\.(\d+))?([bdeEfFgGxXos%])?$`)

// translateSpec converts a replacement-field format spec into a fmt verb.
func translateSpec(spec string) (string, conversion, error) {
	if spec == "" {
		return "%v", convAny, nil
	}
	m := fieldSpec.FindStringSubmatch(spec)
	if m == nil {
		return "", 0, fmt.Errorf("unsupported format spec %q", spec)
	}
	fill, align, sign, alt, zero, width, prec, typ := m[1], m[2], m[3], m[4], m[5], m[6], m[7], m[8]

	var flags strings.Builder
	switch align {
	case "", ">":
	case "<":
		flags.WriteByte('-')
	case "=":
		if fill != "0" {
			return "", 0, fmt.Errorf("unsupported alignment in %q", spec)
		}
		zero = "0"
	default:
		return "", 0, fmt.Errorf("unsupported alignment in %q", spec)
	}
	switch fill {
	case "", " ":
	case "0":
		if align == "<" {
			return "", 0, fmt.Errorf("unsupported fill in %q", spec)
		}
		zero = "0"
	default:
		return "", 0, fmt.Errorf("unsupported fill %q in %q", fill, spec)
	}
	if sign == "+" || sign == " " {
		flags.WriteString(sign)
	}
	flags.WriteString(alt)
	if align != "<" {
		flags.WriteString(zero)
	}
	size := width
	if prec != "" {
		size += "." + prec
	}

	verb, conv := "v", convAny
	switch typ {
	case "d":
		verb, conv = "d", convInt
	case "b", "o", "x", "X":
		verb, conv = typ, convInt
	case "e", "E", "f", "g", "G":
		verb, conv = typ, convFloat
	case "F":
		verb, conv = "f", convFloat
	case "%":
		if prec == "" {
			size += ".6"
		}
		return "%" + flags.String() + size + "f%%", convPercent, nil
	case "s":
		verb = "v"
	case "":
		if prec != "" {
			verb, conv = "g", convFloat
		}
	}
	return "%" + flags.String() + size + verb, conv, nil
}
