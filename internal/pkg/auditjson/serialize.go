// Package auditjson turns arbitrary Go values into JSON-safe structures for the
// audit trail. Normalize never fails: values it cannot represent exactly are
// replaced with a textual fallback and reported back to the caller.
package auditjson

import (
	"encoding"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const maxDepth = 32

// Fallback describes one value that was replaced by its textual form.
type Fallback struct {
	Path   string
	Reason string
}

func (f Fallback) String() string {
	return f.Path + ": " + f.Reason
}

// Normalize walks v and returns a structure made only of map[string]any, []any,
// string, bool, numbers and nil. Mappings serialize key by key, sequences element
// by element, times become RFC 3339 text and byte payloads are decoded as UTF-8
// dropping invalid sequences.
func Normalize(v any) (out any, fallbacks []Fallback) {
	w := &walker{}
	out = w.walk("$", reflect.ValueOf(v), 0)
	return out, w.fallbacks
}

type walker struct {
	fallbacks []Fallback
}

func (w *walker) fallback(path, reason, text string) string {
	w.fallbacks = append(w.fallbacks, Fallback{Path: path, Reason: reason})
	return text
}

func (w *walker) walk(path string, v reflect.Value, depth int) (out any) {
	if !v.IsValid() {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			out = w.fallback(path, fmt.Sprintf("panic during serialization: %v", r), "<unserializable>")
		}
	}()

	if depth > maxDepth {
		// textOf could recurse forever on a self-referencing map here
		return w.fallback(path, "maximum nesting depth exceeded", "<max depth>")
	}

	if v.CanInterface() {
		switch t := v.Interface().(type) {
		case time.Time:
			return t.Format(time.RFC3339Nano)
		case decimal.Decimal:
			return t.String()
		case []byte:
			return decodeBytes(t)
		case json.RawMessage:
			var decoded any
			if err := json.Unmarshal(t, &decoded); err != nil {
				return w.fallback(path, "invalid raw json", textOf(v))
			}
			return w.walk(path, reflect.ValueOf(decoded), depth+1)
		}
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return w.walk(path, v.Elem(), depth+1)

	case reflect.Map:
		if v.IsNil() {
			return nil
		}
		m := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			key := keyString(iter.Key())
			m[key] = w.walk(path+"."+key, iter.Value(), depth+1)
		}
		return m

	case reflect.Slice:
		if v.IsNil() {
			return nil
		}
		fallthrough
	case reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, v.Len())
			reflect.Copy(reflect.ValueOf(b), v)
			return decodeBytes(b)
		}
		s := make([]any, v.Len())
		for i := 0; i < v.Len(); i++ {
			s[i] = w.walk(fmt.Sprintf("%s[%d]", path, i), v.Index(i), depth+1)
		}
		return s

	case reflect.Struct:
		if v.CanInterface() {
			if m, ok := v.Interface().(json.Marshaler); ok {
				return w.viaJSON(path, m, v)
			}
			if tm, ok := v.Interface().(encoding.TextMarshaler); ok {
				text, err := tm.MarshalText()
				if err != nil {
					return w.fallback(path, "text marshal failed: "+err.Error(), textOf(v))
				}
				return decodeBytes(text)
			}
		}
		return w.walkStruct(path, v, depth)

	case reflect.String:
		s := v.String()
		if !utf8.ValidString(s) {
			return strings.ToValidUTF8(s, "")
		}
		return s

	case reflect.Bool:
		return v.Bool()

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int()

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint()

	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return w.fallback(path, "non-finite float", textOf(v))
		}
		return f

	default:
		// complex, chan, func, unsafe pointer
		return w.fallback(path, "unsupported kind "+v.Kind().String(), textOf(v))
	}
}

func (w *walker) walkStruct(path string, v reflect.Value, depth int) any {
	t := v.Type()
	m := make(map[string]any, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name := field.Name
		if tag, ok := field.Tag.Lookup("json"); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}
		m[name] = w.walk(path+"."+name, v.Field(i), depth+1)
	}
	return m
}

func (w *walker) viaJSON(path string, m json.Marshaler, v reflect.Value) any {
	raw, err := m.MarshalJSON()
	if err != nil {
		return w.fallback(path, "json marshal failed: "+err.Error(), textOf(v))
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return w.fallback(path, "json round trip failed: "+err.Error(), textOf(v))
	}
	return decoded
}

func keyString(k reflect.Value) string {
	if k.Kind() == reflect.String {
		return k.String()
	}
	if k.CanInterface() {
		if t, ok := k.Interface().(time.Time); ok {
			return t.Format(time.RFC3339Nano)
		}
	}
	return textOf(k)
}

func decodeBytes(b []byte) string {
	return strings.ToValidUTF8(string(b), "")
}

func textOf(v reflect.Value) string {
	if !v.IsValid() {
		return "<invalid>"
	}
	if !v.CanInterface() {
		return fmt.Sprintf("<%s>", v.Type())
	}
	return fmt.Sprintf("%v", v.Interface())
}
