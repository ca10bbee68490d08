package profile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Placeholder is rendered for any absent value.
const Placeholder = "-"

// FormatField renders a scalar value. nil, nil pointers and the empty string
// render as Placeholder; everything else is stringified and trimmed.
// A whitespace-only string therefore renders as "".
func FormatField(v any) string {
	switch val := v.(type) {
	case nil:
		return Placeholder
	case string:
		if val == "" {
			return Placeholder
		}
		return strings.TrimSpace(val)
	case *string:
		if val == nil {
			return Placeholder
		}
		return FormatField(*val)
	case int:
		return strconv.Itoa(val)
	case *int:
		if val == nil {
			return Placeholder
		}
		return strconv.Itoa(*val)
	case int64:
		return strconv.FormatInt(val, 10)
	case *int64:
		if val == nil {
			return Placeholder
		}
		return strconv.FormatInt(*val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case *float64:
		if val == nil {
			return Placeholder
		}
		return strconv.FormatFloat(*val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case *bool:
		if val == nil {
			return Placeholder
		}
		return strconv.FormatBool(*val)
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}

// FormatList joins values with ", " in their original order.
// A nil or empty slice renders as Placeholder.
func FormatList(values []string) string {
	if len(values) == 0 {
		return Placeholder
	}
	return strings.Join(values, ", ")
}

// FormatJSONArray renders a JSON array of strings and objects.
//
// Anything that is not a non-empty array renders as Placeholder. String
// elements pass through unchanged, objects render as "key: value" pairs joined
// by ", ", and elements are joined by "; ". Object keys keep their document
// order whether or not the object matches a known shape (themes, content
// examples, hashtags). null elements are skipped.
func FormatJSONArray(raw json.RawMessage) string {
	items, ok := decodeArray(raw)
	if !ok || len(items) == 0 {
		return Placeholder
	}

	parts := make([]string, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case nil:
			continue
		case string:
			parts = append(parts, v)
		case jsonObject:
			parts = append(parts, classify(v).render())
		default:
			parts = append(parts, jsonScalar(v))
		}
	}
	if len(parts) == 0 {
		return Placeholder
	}
	return strings.Join(parts, "; ")
}

// intelligenceItem is the tagged union of object shapes found in the
// Instagram research arrays.
type intelligenceItem interface {
	render() string
}

// ContentTheme is an element of key_content_themes.
type ContentTheme struct {
	Theme       *string
	Description *string
	order       []string
}

// ContentExample is an element of representative_content_examples.
type ContentExample struct {
	ContentType    *string
	TitleOrCaption *string
	Theme          *string
	order          []string
}

// Hashtag is an element of key_hashtags.
type Hashtag struct {
	Hashtag  *string
	Category *string
	order    []string
}

// genericItem is any object that matches none of the known shapes.
type genericItem struct {
	fields jsonObject
}

func (t ContentTheme) render() string {
	return joinInOrder(t.order, map[string]*string{"theme": t.Theme, "description": t.Description})
}

func (e ContentExample) render() string {
	return joinInOrder(e.order, map[string]*string{
		"content_type":     e.ContentType,
		"title_or_caption": e.TitleOrCaption,
		"theme":            e.Theme,
	})
}

func (h Hashtag) render() string {
	return joinInOrder(h.order, map[string]*string{"hashtag": h.Hashtag, "category": h.Category})
}

func (g genericItem) render() string {
	parts := make([]string, 0, len(g.fields))
	for _, f := range g.fields {
		parts = append(parts, f.Key+": "+jsonScalar(f.Value))
	}
	return strings.Join(parts, ", ")
}

// joinInOrder renders the set values as "key: value" pairs in the order the
// keys appeared in the source object.
func joinInOrder(order []string, values map[string]*string) string {
	parts := make([]string, 0, len(order))
	for _, key := range order {
		if v := values[key]; v != nil {
			parts = append(parts, key+": "+*v)
		}
	}
	return strings.Join(parts, ", ")
}

var shapeKeys = []struct {
	keys  map[string]bool
	build func(jsonObject) intelligenceItem
}{
	{
		keys: map[string]bool{"hashtag": true, "category": true},
		build: func(o jsonObject) intelligenceItem {
			return Hashtag{Hashtag: o.str("hashtag"), Category: o.str("category"), order: o.keys()}
		},
	},
	{
		keys: map[string]bool{"content_type": true, "title_or_caption": true, "theme": true},
		build: func(o jsonObject) intelligenceItem {
			return ContentExample{
				ContentType:    o.str("content_type"),
				TitleOrCaption: o.str("title_or_caption"),
				Theme:          o.str("theme"),
			}
		},
	},
	{
		keys: map[string]bool{"theme": true, "description": true},
		build: func(o jsonObject) intelligenceItem {
			return ContentTheme{Theme: o.str("theme"), Description: o.str("description"), order: o.keys()}
		},
	},
}

// classify maps an object onto a known shape when every key belongs to that
// shape and every value is a string. Anything else stays generic.
func classify(o jsonObject) intelligenceItem {
	if len(o) == 0 {
		return genericItem{fields: o}
	}
	for _, shape := range shapeKeys {
		if o.fitsShape(shape.keys) {
			return shape.build(o)
		}
	}
	return genericItem{fields: o}
}

// jsonField is one key/value pair of a decoded object.
type jsonField struct {
	Key   string
	Value any
}

// jsonObject is a decoded JSON object that keeps document key order.
type jsonObject []jsonField

func (o jsonObject) str(key string) *string {
	for _, f := range o {
		if f.Key == key {
			if s, ok := f.Value.(string); ok {
				return &s
			}
		}
	}
	return nil
}

// keys returns the object's keys in document order, first occurrence only.
func (o jsonObject) keys() []string {
	out := make([]string, 0, len(o))
	for _, f := range o {
		if !slices.Contains(out, f.Key) {
			out = append(out, f.Key)
		}
	}
	return out
}

func (o jsonObject) fitsShape(keys map[string]bool) bool {
	for _, f := range o {
		if !keys[f.Key] {
			return false
		}
		if _, ok := f.Value.(string); !ok {
			return false
		}
	}
	return true
}

func decodeArray(raw json.RawMessage) ([]any, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, false
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	v, err := decodeOrdered(dec)
	if err != nil {
		return nil, false
	}
	items, ok := v.([]any)
	return items, ok
}

// decodeOrdered decodes the next JSON value, preserving object key order.
func decodeOrdered(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch delim {
	case '{':
		obj := jsonObject{}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("profile: unexpected object key %v", keyTok)
			}
			val, err := decodeOrdered(dec)
			if err != nil {
				return nil, err
			}
			obj = append(obj, jsonField{Key: key, Value: val})
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return obj, nil
	case '[':
		arr := []any{}
		for dec.More() {
			val, err := decodeOrdered(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, val)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("profile: unexpected delimiter %v", delim)
	}
}

// jsonScalar renders a decoded value inside an object or array.
// Nested arrays join with "," and nested objects render as compact JSON.
func jsonScalar(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = jsonScalar(item)
		}
		return strings.Join(parts, ",")
	case jsonObject:
		var buf bytes.Buffer
		writeCompact(&buf, val)
		return buf.String()
	default:
		return fmt.Sprint(val)
	}
}

func writeCompact(buf *bytes.Buffer, v any) {
	switch val := v.(type) {
	case jsonObject:
		buf.WriteByte('{')
		for i, f := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, _ := json.Marshal(f.Key)
			buf.Write(key)
			buf.WriteByte(':')
			writeCompact(buf, f.Value)
		}
		buf.WriteByte('}')
	case []any:
		buf.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeCompact(buf, item)
		}
		buf.WriteByte(']')
	case string:
		quoted, _ := json.Marshal(val)
		buf.Write(quoted)
	default:
		buf.WriteString(jsonScalar(val))
	}
}
