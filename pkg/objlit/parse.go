package objlit

import (
	"encoding/json"
	"strconv"
	"strings"
	"unicode"

	"github.com/schematic-dev/schematic/pkg/errors"
)

// Extract locates the object literal inside one of the recognized document
// shapes and returns the text before it, the literal itself, and the text
// after it.
func Extract(src string) (prefix, objSrc, suffix string, err error) {
	start := -1
	for _, marker := range []string{"export default", "module.exports"} {
		if idx := strings.Index(src, marker); idx >= 0 {
			start = idx + len(marker)
			break
		}
	}

	var open int
	if start >= 0 {
		open = strings.Index(src[start:], "{")
		if open < 0 {
			return "", "", "", errors.New(errors.ErrMergeParse, "no object literal after export marker")
		}
		open += start
	} else {
		open = strings.Index(src, "{")
		if open < 0 {
			return "", "", "", errors.New(errors.ErrMergeParse, "no object literal found")
		}
		// a bare document must not have anything but whitespace before the brace
		if strings.TrimSpace(src[:open]) != "" {
			return "", "", "", errors.New(errors.ErrMergeParse, "unrecognized document shape")
		}
	}

	end, err := matchBrace(src, open)
	if err != nil {
		return "", "", "", err
	}

	return src[:open], src[open : end+1], src[end+1:], nil
}

// matchBrace returns the index of the brace closing the one at open,
// skipping string literals and comments.
func matchBrace(src string, open int) (int, error) {
	depth := 0
	i := open
	for i < len(src) {
		c := src[i]
		switch c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, nil
			}
		case '\'', '"', '`':
			end, err := skipString(src, i)
			if err != nil {
				return 0, err
			}
			i = end
		case '/':
			i = skipComment(src, i)
		}
		i++
	}
	return 0, errors.New(errors.ErrMergeParse, "unbalanced braces in object literal")
}

func skipString(src string, start int) (int, error) {
	quote := src[start]
	for i := start + 1; i < len(src); i++ {
		switch src[i] {
		case '\\':
			i++
		case quote:
			return i, nil
		}
	}
	return 0, errors.New(errors.ErrMergeParse, "unterminated string literal")
}

// skipComment returns the index of the last character of a comment starting
// at i, or i itself when no comment starts there.
func skipComment(src string, i int) int {
	if i+1 >= len(src) {
		return i
	}
	switch src[i+1] {
	case '/':
		if nl := strings.IndexByte(src[i:], '\n'); nl >= 0 {
			return i + nl
		}
		return len(src) - 1
	case '*':
		if end := strings.Index(src[i+2:], "*/"); end >= 0 {
			return i + 2 + end + 1
		}
		return len(src) - 1
	}
	return i
}

// Parse parses a bare object literal into an Object.
func Parse(src string) (*Object, error) {
	p := &parser{src: src}
	p.skipSpace()
	obj, err := p.parseObject()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected trailing content at offset %d", p.pos)
	}
	return obj, nil
}

// Coerce parses generated content into an Object: first via the document
// shapes Extract recognizes, then as plain JSON.
func Coerce(src string) (*Object, error) {
	if _, objSrc, _, err := Extract(src); err == nil {
		if obj, err := Parse(objSrc); err == nil {
			return obj, nil
		}
	}

	var m map[string]interface{}
	if err := json.Unmarshal([]byte(src), &m); err != nil {
		return nil, errors.Wrap(err, errors.ErrMergeParse, "content is neither a recognized object literal nor JSON")
	}
	obj := NewObject()
	for _, k := range sortedKeys(m) {
		obj.Set(k, normalizeValue(m[k]))
	}
	return obj, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return errors.Newf(errors.ErrMergeParse, format, args...)
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			p.pos++
			continue
		}
		if c == '/' {
			next := skipComment(p.src, p.pos)
			if next != p.pos {
				p.pos = next + 1
				continue
			}
		}
		return
	}
}

func (p *parser) peek() (byte, bool) {
	if p.pos >= len(p.src) {
		return 0, false
	}
	return p.src[p.pos], true
}

func (p *parser) expect(c byte) error {
	got, ok := p.peek()
	if !ok || got != c {
		return p.errorf("expected '%c' at offset %d", c, p.pos)
	}
	p.pos++
	return nil
}

func (p *parser) parseObject() (*Object, error) {
	if err := p.expect('{'); err != nil {
		return nil, err
	}

	obj := NewObject()
	for {
		p.skipSpace()
		c, ok := p.peek()
		if !ok {
			return nil, p.errorf("unterminated object literal")
		}
		if c == '}' {
			p.pos++
			return obj, nil
		}

		key, err := p.parseKey()
		if err != nil {
			return nil, err
		}

		p.skipSpace()
		if err := p.expect(':'); err != nil {
			return nil, err
		}

		p.skipSpace()
		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		obj.Set(key, value)

		p.skipSpace()
		c, ok = p.peek()
		if !ok {
			return nil, p.errorf("unterminated object literal")
		}
		switch c {
		case ',':
			p.pos++
		case '}':
			// closing handled on next pass
		default:
			return nil, p.errorf("expected ',' or '}' at offset %d", p.pos)
		}
	}
}

func (p *parser) parseKey() (string, error) {
	c, ok := p.peek()
	if !ok {
		return "", p.errorf("unexpected end of input reading key")
	}
	if c == '\'' || c == '"' || c == '`' {
		return p.parseString()
	}

	start := p.pos
	for p.pos < len(p.src) && isIdentChar(p.src[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		return "", p.errorf("invalid object key at offset %d", p.pos)
	}
	return p.src[start:p.pos], nil
}

func (p *parser) parseValue() (interface{}, error) {
	c, ok := p.peek()
	if !ok {
		return nil, p.errorf("unexpected end of input reading value")
	}

	switch {
	case c == '{':
		return p.parseObject()
	case c == '[':
		return p.parseArray()
	case c == '\'' || c == '"' || c == '`':
		return p.parseString()
	case c == '-' || (c >= '0' && c <= '9'):
		return p.parseNumber()
	default:
		return p.parseIdentExpr()
	}
}

func (p *parser) parseArray() ([]interface{}, error) {
	if err := p.expect('['); err != nil {
		return nil, err
	}

	var out []interface{}
	for {
		p.skipSpace()
		c, ok := p.peek()
		if !ok {
			return nil, p.errorf("unterminated array literal")
		}
		if c == ']' {
			p.pos++
			if out == nil {
				out = []interface{}{}
			}
			return out, nil
		}

		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		out = append(out, value)

		p.skipSpace()
		c, ok = p.peek()
		if !ok {
			return nil, p.errorf("unterminated array literal")
		}
		switch c {
		case ',':
			p.pos++
		case ']':
		default:
			return nil, p.errorf("expected ',' or ']' at offset %d", p.pos)
		}
	}
}

func (p *parser) parseString() (string, error) {
	end, err := skipString(p.src, p.pos)
	if err != nil {
		return "", err
	}
	raw := p.src[p.pos+1 : end]
	p.pos = end + 1

	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			sb.WriteByte(raw[i])
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		default:
			sb.WriteByte(raw[i])
		}
	}
	return sb.String(), nil
}

func (p *parser) parseNumber() (float64, error) {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if (c >= '0' && c <= '9') || c == '-' || c == '+' || c == '.' || c == 'e' || c == 'E' {
			p.pos++
			continue
		}
		break
	}
	num, err := strconv.ParseFloat(p.src[start:p.pos], 64)
	if err != nil {
		return 0, p.errorf("invalid number %q at offset %d", p.src[start:p.pos], start)
	}
	return num, nil
}

// parseIdentExpr consumes a bare expression: a keyword, a reference to an
// imported symbol, or a call like react({jsx: true}). It scans until a
// comma or closing bracket at zero nesting depth.
func (p *parser) parseIdentExpr() (interface{}, error) {
	start := p.pos
	depth := 0
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch c {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth == 0 {
				goto done
			}
			depth--
		case ',':
			if depth == 0 {
				goto done
			}
		case '\'', '"', '`':
			end, err := skipString(p.src, p.pos)
			if err != nil {
				return nil, err
			}
			p.pos = end
		}
		p.pos++
	}
done:
	expr := strings.TrimSpace(p.src[start:p.pos])
	if expr == "" {
		return nil, p.errorf("empty expression at offset %d", start)
	}

	switch expr {
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "null", "undefined":
		return nil, nil
	}
	return Ident(expr), nil
}

func isIdentChar(c byte) bool {
	return c == '_' || c == '$' || unicode.IsLetter(rune(c)) || unicode.IsDigit(rune(c))
}
