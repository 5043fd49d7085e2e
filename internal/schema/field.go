// Package schema declares the MediOps entities once, as field-definition
// tables, and derives the full, insertable and partial validators from them.
package schema

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of calendar dates
const DateLayout = "2006-01-02"

// Kind is the wire type of a field
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindDecimal
	KindDate
	KindTimestamp
	KindEnum
)

// Field describes one attribute of an entity. Fields are built with the
// constructor functions below and refined with the chained options.
type Field struct {
	Name      string
	Kind      Kind
	required  bool
	generated bool
	nonEmpty  bool
	def       json.RawMessage
	oneOf     []string
	precision int32
	scale     int32
}

func StringField(name string) Field { return Field{Name: name, Kind: KindString} }

func IntField(name string) Field { return Field{Name: name, Kind: KindInt} }

func DateField(name string) Field { return Field{Name: name, Kind: KindDate} }

func TimestampField(name string) Field { return Field{Name: name, Kind: KindTimestamp} }

// DecimalField is a string-encoded numeric(precision, scale): at most scale
// fractional digits and precision-scale integer digits
func DecimalField(name string, precision, scale int32) Field {
	return Field{Name: name, Kind: KindDecimal, precision: precision, scale: scale}
}

// EnumField accepts only the listed string values
func EnumField(name string, values ...string) Field {
	return Field{Name: name, Kind: KindEnum, oneOf: values}
}

// Required marks the field mandatory on insert
func (f Field) Required() Field {
	f.required = true
	return f
}

// Generated marks a server-assigned field. It is stripped from insert and
// partial input and mandatory in the full shape.
func (f Field) Generated() Field {
	f.generated = true
	return f
}

// NonEmpty rejects the empty string
func (f Field) NonEmpty() Field {
	f.nonEmpty = true
	return f
}

// Default applies value when the field is absent or null on insert
func (f Field) Default(value string) Field {
	b, _ := json.Marshal(value)
	f.def = b
	return f
}

// Values returns the allowed values of an enum field
func (f Field) Values() []string {
	return slices.Clone(f.oneOf)
}

func (f Field) hasDefault() bool { return f.def != nil }

// optional fields may be absent or null in every shape
func (f Field) optional() bool { return !f.required && !f.generated && !f.hasDefault() }

func (f Field) expected() string {
	if f.Kind == KindInt {
		return "number"
	}
	return "string"
}

// check validates a present, non-null value and returns its normalized form
func (f Field) check(raw json.RawMessage) (json.RawMessage, string) {
	got := typeOf(raw)
	if f.Kind == KindInt {
		if got != "number" {
			return nil, fmt.Sprintf("Expected number, received %s", got)
		}
		n, err := strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return nil, "Expected integer, received float"
		}
		return json.RawMessage(strconv.FormatInt(n, 10)), ""
	}

	if got != "string" {
		return nil, fmt.Sprintf("Expected string, received %s", got)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, "Invalid string"
	}

	switch f.Kind {
	case KindDecimal:
		d, err := decimal.NewFromString(strings.TrimSpace(s))
		if err != nil {
			return nil, "Invalid decimal"
		}
		if !d.Equal(d.Round(f.scale)) {
			return nil, fmt.Sprintf("Must have at most %d decimal places", f.scale)
		}
		if digits := f.precision - f.scale; d.Abs().GreaterThanOrEqual(decimal.New(1, digits)) {
			return nil, fmt.Sprintf("Must have at most %d integer digits", digits)
		}
		return quote(d.StringFixed(f.scale)), ""
	case KindDate:
		if _, err := time.Parse(DateLayout, s); err != nil {
			return nil, "Invalid date"
		}
	case KindTimestamp:
		if _, err := time.Parse(time.RFC3339Nano, s); err != nil {
			return nil, "Invalid datetime"
		}
	case KindEnum:
		if !slices.Contains(f.oneOf, s) {
			return nil, fmt.Sprintf("Invalid enum value. Expected %s, received '%s'", f.enumList(), s)
		}
	default:
		if f.nonEmpty && s == "" {
			return nil, "String must contain at least 1 character(s)"
		}
	}
	return raw, ""
}

func (f Field) enumList() string {
	quoted := make([]string, len(f.oneOf))
	for i, v := range f.oneOf {
		quoted[i] = "'" + v + "'"
	}
	return strings.Join(quoted, " | ")
}

// describe renders the field as a Swagger 2.0 property
func (f Field) describe() map[string]any {
	prop := map[string]any{"type": "string"}
	switch f.Kind {
	case KindInt:
		prop["type"] = "integer"
	case KindDecimal:
		prop["format"] = "decimal"
		prop["example"] = decimal.New(1550, -2).StringFixed(f.scale)
	case KindDate:
		prop["format"] = "date"
	case KindTimestamp:
		prop["format"] = "date-time"
	case KindEnum:
		prop["enum"] = f.Values()
	}
	if f.hasDefault() {
		var v any
		_ = json.Unmarshal(f.def, &v)
		prop["default"] = v
	}
	if f.optional() {
		prop["x-nullable"] = true
	}
	if f.generated {
		prop["readOnly"] = true
	}
	return prop
}

// typeOf names the JSON type of raw the way validation messages report it
func typeOf(raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return "undefined"
	}
	switch trimmed[0] {
	case '{':
		return "object"
	case '[':
		return "array"
	case '"':
		return "string"
	case 't', 'f':
		return "boolean"
	case 'n':
		return "null"
	default:
		return "number"
	}
}

func quote(s string) json.RawMessage {
	b, _ := json.Marshal(s)
	return b
}
