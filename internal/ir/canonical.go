package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical encodes v as canonical JSON, the only form fingerprints
// are computed over. It accepts strings, int, int64, bool, []string, []any
// and map[string]any, and follows RFC 8785 with three additions: strings
// are NFC normalized, HTML characters are left unescaped, and null and
// floats are rejected so that equal programs always hash equally.
func MarshalCanonical(v any) ([]byte, error) {
	var enc canonicalEncoder
	if err := enc.value(v, "$"); err != nil {
		return nil, err
	}
	return enc.buf.Bytes(), nil
}

type canonicalEncoder struct {
	buf bytes.Buffer
}

func (e *canonicalEncoder) value(v any, path string) error {
	switch val := v.(type) {
	case string:
		return e.str(val)
	case int:
		e.buf.WriteString(strconv.Itoa(val))
	case int64:
		e.buf.WriteString(strconv.FormatInt(val, 10))
	case bool:
		e.buf.WriteString(strconv.FormatBool(val))
	case []string:
		e.buf.WriteByte('[')
		for i, s := range val {
			if i > 0 {
				e.buf.WriteByte(',')
			}
			if err := e.str(s); err != nil {
				return err
			}
		}
		e.buf.WriteByte(']')
	case []any:
		e.buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				e.buf.WriteByte(',')
			}
			if err := e.value(elem, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
		e.buf.WriteByte(']')
	case map[string]any:
		return e.object(val, path)
	case nil:
		return fmt.Errorf("canonical JSON: null at %s", path)
	case float32, float64:
		return fmt.Errorf("canonical JSON: float %v at %s", val, path)
	default:
		return fmt.Errorf("canonical JSON: unsupported %T at %s", v, path)
	}
	return nil
}

func (e *canonicalEncoder) object(obj map[string]any, path string) error {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareUTF16)

	e.buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			e.buf.WriteByte(',')
		}
		if err := e.str(k); err != nil {
			return err
		}
		e.buf.WriteByte(':')
		if err := e.value(obj[k], path+"."+k); err != nil {
			return err
		}
	}
	e.buf.WriteByte('}')
	return nil
}

// str writes s NFC normalized. json.Encoder is used for escaping because it
// is the only stdlib path that can turn HTML escaping off; its trailing
// newline is dropped.
func (e *canonicalEncoder) str(s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return err
	}
	e.buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte{'\n'}))
	return nil
}

// compareUTF16 orders keys by UTF-16 code units. Byte order differs for
// characters above U+FFFF, whose surrogates sort below U+E000.
func compareUTF16(a, b string) int {
	return slices.Compare(utf16.Encode([]rune(a)), utf16.Encode([]rune(b)))
}
