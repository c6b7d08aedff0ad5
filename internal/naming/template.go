package naming

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Render expands template with fields.
func Render(template string, fields Fields) (string, error) {
	var b strings.Builder
	for i := 0; i < len(template); {
		c := template[i]
		switch {
		case c == '{' && i+1 < len(template) && template[i+1] == '{':
			b.WriteByte('{')
			i += 2
		case c == '}' && i+1 < len(template) && template[i+1] == '}':
			b.WriteByte('}')
			i += 2
		case c == '{':
			end := strings.IndexByte(template[i:], '}')
			if end < 0 {
				return "", fmt.Errorf("template %q: unclosed placeholder at %d", template, i)
			}
			out, err := expand(template[i+1:i+end], fields)
			if err != nil {
				return "", fmt.Errorf("template %q: %w", template, err)
			}
			b.WriteString(out)
			i += end + 1
		case c == '}':
			return "", fmt.Errorf("template %q: single '}' at %d", template, i)
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String(), nil
}

// Path renders template and joins it under root. The result must stay inside
// root.
func Path(root, template string, fields Fields) (string, error) {
	rel, err := Render(template, fields)
	if err != nil {
		return "", err
	}
	rel = strings.TrimSpace(rel)
	if rel == "" {
		return "", errors.New("template rendered an empty name")
	}
	if filepath.IsAbs(rel) {
		return "", fmt.Errorf("template rendered absolute path %q", rel)
	}
	full := filepath.Join(root, rel)
	within, err := filepath.Rel(root, full)
	if err != nil || within == ".." || strings.HasPrefix(within, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("template rendered %q outside %s", rel, root)
	}
	return full, nil
}

func expand(placeholder string, fields Fields) (string, error) {
	name, spec, _ := strings.Cut(placeholder, ":")
	name = strings.TrimSpace(name)
	value, ok := fields.lookup(name)
	if !ok {
		return "", fmt.Errorf("unknown field %q", name)
	}
	return applySpec(value, spec)
}

type formatSpec struct {
	fill  rune
	align byte
	width int
	kind  byte
}

// maxWidth bounds padding; file name components cannot be longer anyway.
const maxWidth = 255

func parseSpec(spec string) (formatSpec, error) {
	fs := formatSpec{fill: ' '}
	rest := spec
	if r, size := utf8.DecodeRuneInString(rest); size > 0 && size < len(rest) && isAlign(rest[size]) {
		fs.fill = r
		fs.align = rest[size]
		rest = rest[size+1:]
	} else if len(rest) > 0 && isAlign(rest[0]) {
		fs.align = rest[0]
		rest = rest[1:]
	}
	if strings.HasPrefix(rest, "0") && fs.align == 0 {
		fs.fill = '0'
		fs.align = '='
		rest = rest[1:]
	}
	digits := 0
	for digits < len(rest) && rest[digits] >= '0' && rest[digits] <= '9' {
		digits++
	}
	if digits > 0 {
		width, err := strconv.Atoi(rest[:digits])
		if err != nil || width > maxWidth {
			return formatSpec{}, fmt.Errorf("format spec %q: width exceeds %d", spec, maxWidth)
		}
		fs.width = width
		rest = rest[digits:]
	}
	switch rest {
	case "":
	case "d", "s":
		fs.kind = rest[0]
	default:
		return formatSpec{}, fmt.Errorf("unsupported format spec %q", spec)
	}
	return fs, nil
}

func isAlign(c byte) bool {
	return c == '<' || c == '>' || c == '^' || c == '='
}

func applySpec(value any, spec string) (string, error) {
	fs, err := parseSpec(spec)
	if err != nil {
		return "", err
	}
	var text string
	numeric := false
	switch v := value.(type) {
	case int:
		text, numeric = strconv.Itoa(v), true
	case int64:
		text, numeric = strconv.FormatInt(v, 10), true
	case string:
		text = v
	default:
		text = fmt.Sprint(v)
	}
	if fs.kind == 'd' && !numeric {
		return "", fmt.Errorf("format 'd' applied to non-integer value %q", text)
	}
	return pad(text, fs, numeric), nil
}

func pad(text string, fs formatSpec, numeric bool) string {
	n := utf8.RuneCountInString(text)
	if fs.width <= n {
		return text
	}
	align := fs.align
	if align == 0 {
		align = '<'
		if numeric {
			align = '>'
		}
	}
	fill := strings.Repeat(string(fs.fill), fs.width-n)
	switch align {
	case '>':
		return fill + text
	case '^':
		left := (fs.width - n) / 2
		return string([]rune(fill)[:left]) + text + string([]rune(fill)[left:])
	case '=':
		if numeric && strings.HasPrefix(text, "-") {
			return "-" + fill + text[1:]
		}
		return fill + text
	default:
		return text + fill
	}
}
