// SPDX-License-Identifier: GPL-3.0-or-later

package apiflow

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"unicode/utf8"
)

// Kind is the kind of a JSON [Value].
type Kind int

// Possible [Kind] values.
const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// String implements [fmt.Stringer].
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is an untyped JSON value.
//
// Which field is meaningful depends on Kind: Text holds the string or the
// number literal, Bool holds booleans, Items holds array elements, and
// Members holds object members in document order.
type Value struct {
	Kind    Kind
	Text    string
	Bool    bool
	Items   []Value
	Members []Member
}

// Member is a key-value pair of a JSON object.
type Member struct {
	Key   string
	Value Value
}

// errTrailingData indicates that a JSON document contains more than one value.
var errTrailingData = errors.New("apiflow: trailing data after JSON value")

// ParseValue parses a single JSON document into a [Value].
func ParseValue(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	value, err := parseValue(dec)
	if err != nil {
		return Value{}, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return Value{}, errTrailingData
	}
	return value, nil
}

func parseValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return parseObject(dec)
		case '[':
			return parseArray(dec)
		default:
			return Value{}, fmt.Errorf("apiflow: unexpected delimiter %q", rune(t))
		}
	case string:
		return Value{Kind: KindString, Text: t}, nil
	case json.Number:
		return Value{Kind: KindNumber, Text: t.String()}, nil
	case bool:
		return Value{Kind: KindBool, Bool: t}, nil
	case nil:
		return Value{Kind: KindNull}, nil
	default:
		return Value{}, fmt.Errorf("apiflow: unexpected token %v", tok)
	}
}

func parseObject(dec *json.Decoder) (Value, error) {
	members := []Member{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Value{}, err
		}
		key, ok := tok.(string)
		if !ok {
			return Value{}, fmt.Errorf("apiflow: unexpected object key %v", tok)
		}
		value, err := parseValue(dec)
		if err != nil {
			return Value{}, err
		}
		members = append(members, Member{Key: key, Value: value})
	}
	if _, err := dec.Token(); err != nil { // consume '}'
		return Value{}, err
	}
	return Value{Kind: KindObject, Members: members}, nil
}

func parseArray(dec *json.Decoder) (Value, error) {
	items := []Value{}
	for dec.More() {
		value, err := parseValue(dec)
		if err != nil {
			return Value{}, err
		}
		items = append(items, value)
	}
	if _, err := dec.Token(); err != nil { // consume ']'
		return Value{}, err
	}
	return Value{Kind: KindArray, Items: items}, nil
}

// MarshalJSON implements [json.Marshaler] emitting compact JSON that
// preserves the order of object members.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.appendJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) appendJSON(buf *bytes.Buffer) error {
	switch v.Kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.Bool))
	case KindNumber:
		buf.WriteString(v.Text)
	case KindString:
		data, err := json.Marshal(v.Text)
		if err != nil {
			return err
		}
		buf.Write(data)
	case KindArray:
		buf.WriteByte('[')
		for idx, item := range v.Items {
			if idx > 0 {
				buf.WriteByte(',')
			}
			if err := item.appendJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		for idx, m := range v.Members {
			if idx > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(m.Key)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := m.Value.appendJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("apiflow: cannot marshal %s", v.Kind)
	}
	return nil
}

// leafString returns the flattened string form used by [Stringify].
func (v Value) leafString() string {
	switch v.Kind {
	case KindString, KindNumber:
		return v.Text
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindNull:
		return "null"
	default:
		data, _ := v.MarshalJSON()
		return string(data)
	}
}

// describe returns a short description for [*CastError].
func (v Value) describe() string {
	const maxlen = 64
	data, _ := v.MarshalJSON()
	text := string(data)
	if len(text) > maxlen {
		n := maxlen
		for n > 0 && !utf8.RuneStart(text[n]) {
			n--
		}
		text = text[:n] + "..."
	}
	return v.Kind.String() + " " + text
}
