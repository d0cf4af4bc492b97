package castor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"unicode"
)

// jsonObjectWriter builds a JSON object whose fields appear exactly in the
// order they were appended. encoding/json alone cannot do that for the mixed
// records the registry persists, where a command tag comes first and value
// fields follow. The zero value is ready to use.
type jsonObjectWriter struct {
	bytes.Buffer
	err error
}

// Append adds one "key":value pair, the value marshaled with json.Marshal.
func (w *jsonObjectWriter) Append(key string, value any) *jsonObjectWriter {
	if w.err != nil {
		return w
	}
	raw, err := json.Marshal(value)
	if err != nil {
		w.err = fmt.Errorf("failed to marshal value for key %q: %w", key, err)
		return w
	}
	fmt.Fprintf(w, "%q:", key)
	w.Write(raw)
	w.WriteByte(',')
	return w
}

// Optional is Append, skipped when value is its type's zero value.
func (w *jsonObjectWriter) Optional(key string, value any) *jsonObjectWriter {
	if w.err != nil {
		return w
	}
	if v := reflect.ValueOf(value); !v.IsValid() || v.IsZero() {
		return w
	}
	return w.Append(key, value)
}

// Embed merges the fields of a raw JSON object into the object being built,
// dropping the outer braces.
func (w *jsonObjectWriter) Embed(raw []byte) *jsonObjectWriter {
	if w.err != nil {
		return w
	}
	fields := bytes.TrimSpace(raw)
	if inner, ok := bytes.CutPrefix(fields, []byte{'{'}); ok {
		if inner, ok := bytes.CutSuffix(inner, []byte{'}'}); ok {
			fields = inner
		}
	}
	if len(fields) > 0 {
		w.Write(fields)
		w.WriteByte(',')
	}
	return w
}

// EmbedFrom marshals v and merges its fields into the object being built.
func (w *jsonObjectWriter) EmbedFrom(v any) *jsonObjectWriter {
	if w.err != nil {
		return w
	}
	raw, err := json.Marshal(v)
	if err != nil {
		w.err = fmt.Errorf("failed to marshal for embedding: %w", err)
		return w
	}
	return w.Embed(raw)
}

// PrefixFrom is EmbedFrom with every property name rewritten to
// prefix+CamelCase, so several values of one type can share an object,
// e.g. baseAmount next to priceAmount.
func (w *jsonObjectWriter) PrefixFrom(prefix string, v any) *jsonObjectWriter {
	if w.err != nil {
		return w
	}
	raw, err := json.Marshal(v)
	if err != nil {
		w.err = fmt.Errorf("failed to marshal for embedding: %w", err)
		return w
	}
	renamed, err := renameKeys(raw, func(key string) string {
		runes := []rune(key)
		runes[0] = unicode.ToUpper(runes[0])
		return prefix + string(runes)
	})
	if err != nil {
		w.err = fmt.Errorf("failed to marshal for embedding: %w", err)
		return w
	}
	return w.Embed(renamed)
}

// renameKeys re-emits a JSON document with every object key rewritten
// through rename, keeping field order and values untouched. encoding/json
// offers no key transform, so the document is rebuilt token by token.
func renameKeys(src []byte, rename func(string) string) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(src))
	dec.UseNumber()

	// One frame per open brace or bracket. In an object, keys and values
	// alternate and the separator owed before a token depends on which of
	// the two comes next.
	type frame struct {
		object bool
		key    bool // the next token at this level is a property name
		first  bool
	}
	var stack []frame
	var out bytes.Buffer

	// separate writes the "," or ":" owed before the next key or value and
	// advances the alternation of the enclosing frame.
	separate := func() {
		if len(stack) == 0 {
			return
		}
		f := &stack[len(stack)-1]
		switch {
		case f.object && !f.key:
			out.WriteByte(':')
		case !f.first:
			out.WriteByte(',')
		}
		f.first = false
		if f.object {
			f.key = !f.key
		}
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return out.Bytes(), nil
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case json.Delim:
			switch t {
			case '{', '[':
				separate()
				out.WriteByte(byte(t))
				stack = append(stack, frame{object: t == '{', key: t == '{', first: true})
			default:
				out.WriteByte(byte(t))
				stack = stack[:len(stack)-1]
			}
		case string:
			isKey := len(stack) > 0 && stack[len(stack)-1].object && stack[len(stack)-1].key
			separate()
			if isKey {
				t = rename(t)
			}
			quoted, _ := json.Marshal(t)
			out.Write(quoted)
		case json.Number:
			separate()
			out.WriteString(t.String())
		case bool:
			separate()
			if t {
				out.WriteString("true")
			} else {
				out.WriteString("false")
			}
		case nil:
			separate()
			out.WriteString("null")
		}
	}
}

// MarshalJSON closes the object: the accumulated fields minus the trailing
// comma, wrapped in braces.
func (w *jsonObjectWriter) MarshalJSON() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	fields := bytes.TrimSuffix(w.Bytes(), []byte{','})
	out := make([]byte, 0, len(fields)+2)
	out = append(out, '{')
	out = append(out, fields...)
	return append(out, '}'), nil
}
