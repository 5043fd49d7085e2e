package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ValidationError reports the first offending field of a value
type ValidationError struct {
	Message string
	Field   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validator checks a JSON value and returns its normalized form
type Validator interface {
	Validate(raw []byte) (json.RawMessage, error)
	// Describe returns the Swagger 2.0 schema of the accepted value
	Describe() map[string]any
}

type mode int

const (
	modeFull mode = iota
	modeInsert
	modePartial
)

// Entity is an object shape declared once and validated in three modes
type Entity struct {
	name   string
	fields []Field

	full       Validator
	insertable Validator
	partial    Validator
	list       Validator
}

// Define builds an entity from its field-definition table. Field order is
// preserved in normalized output and decides which error is reported first.
func Define(name string, fields ...Field) *Entity {
	e := &Entity{name: name, fields: fields}
	e.full = objectValidator{entity: e, mode: modeFull}
	e.insertable = objectValidator{entity: e, mode: modeInsert}
	e.partial = objectValidator{entity: e, mode: modePartial}
	e.list = listValidator{elem: e.full}
	return e
}

func (e *Entity) Name() string { return e.name }

// Fields returns the field-definition table
func (e *Entity) Fields() []Field {
	out := make([]Field, len(e.fields))
	copy(out, e.fields)
	return out
}

// Full validates the persisted shape, server fields included
func (e *Entity) Full() Validator { return e.full }

// Insertable validates create input: server fields stripped, defaults applied
func (e *Entity) Insertable() Validator { return e.insertable }

// Partial validates update input: every insertable field optional, no defaults
func (e *Entity) Partial() Validator { return e.partial }

// List validates an array of full values
func (e *Entity) List() Validator { return e.list }

type objectValidator struct {
	entity *Entity
	mode   mode
}

func (v objectValidator) Validate(raw []byte) (json.RawMessage, error) {
	if got := typeOf(raw); got != "object" {
		if got == "undefined" {
			return nil, &ValidationError{Message: "Required"}
		}
		return nil, &ValidationError{Message: fmt.Sprintf("Expected object, received %s", got)}
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, &ValidationError{Message: "Invalid JSON body"}
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	n := 0
	emit := func(name string, value json.RawMessage) {
		if n > 0 {
			buf.WriteByte(',')
		}
		buf.Write(quote(name))
		buf.WriteByte(':')
		buf.Write(value)
		n++
	}

	for _, f := range v.entity.fields {
		if f.generated && v.mode != modeFull {
			continue
		}

		value, present := obj[f.Name]
		isNull := present && typeOf(value) == "null"

		if !present || isNull {
			out, err := v.missing(f, present)
			if err != nil {
				return nil, err
			}
			if out != nil {
				emit(f.Name, out)
			}
			continue
		}

		normalized, msg := f.check(value)
		if msg != "" {
			return nil, &ValidationError{Message: msg, Field: f.Name}
		}
		emit(f.Name, normalized)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// missing resolves an absent or null field. A nil result with no error
// leaves the field out of the normalized value.
func (v objectValidator) missing(f Field, present bool) (json.RawMessage, error) {
	nullValue := json.RawMessage("null")

	if f.optional() {
		if v.mode == modePartial && !present {
			return nil, nil
		}
		return nullValue, nil
	}

	switch v.mode {
	case modeInsert:
		if f.hasDefault() {
			return f.def, nil
		}
	case modePartial:
		if !present {
			return nil, nil
		}
	}

	if !present {
		return nil, &ValidationError{Message: "Required", Field: f.Name}
	}
	return nil, &ValidationError{
		Message: fmt.Sprintf("Expected %s, received null", f.expected()),
		Field:   f.Name,
	}
}

func (v objectValidator) Describe() map[string]any {
	props := map[string]any{}
	var required []string
	for _, f := range v.entity.fields {
		if f.generated && v.mode != modeFull {
			continue
		}
		props[f.Name] = f.describe()
		switch {
		case v.mode == modeFull && !f.optional():
			required = append(required, f.Name)
		case v.mode == modeInsert && f.required:
			required = append(required, f.Name)
		}
	}
	out := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		out["required"] = required
	}
	return out
}

type listValidator struct {
	elem Validator
}

// ListOf validates an array whose elements all satisfy elem
func ListOf(elem Validator) Validator {
	return listValidator{elem: elem}
}

func (v listValidator) Validate(raw []byte) (json.RawMessage, error) {
	if got := typeOf(raw); got != "array" {
		return nil, &ValidationError{Message: fmt.Sprintf("Expected array, received %s", got)}
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &ValidationError{Message: "Invalid JSON body"}
	}

	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, item := range items {
		out, err := v.elem.Validate(item)
		if err != nil {
			var verr *ValidationError
			if errors.As(err, &verr) {
				field := fmt.Sprint(i)
				if verr.Field != "" {
					field += "." + verr.Field
				}
				return nil, &ValidationError{Message: verr.Message, Field: field}
			}
			return nil, err
		}
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(out)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func (v listValidator) Describe() map[string]any {
	return map[string]any{"type": "array", "items": v.elem.Describe()}
}

type emptyValidator struct{}

// Empty accepts only an empty body, as sent with 204 and 302 responses
var Empty Validator = emptyValidator{}

func (emptyValidator) Validate(raw []byte) (json.RawMessage, error) {
	if len(bytes.TrimSpace(raw)) != 0 {
		return nil, &ValidationError{Message: "Expected empty body"}
	}
	return nil, nil
}

func (emptyValidator) Describe() map[string]any { return nil }

// Decode validates raw and decodes the normalized value into T
func Decode[T any](v Validator, raw []byte) (T, error) {
	var out T
	normalized, err := v.Validate(raw)
	if err != nil {
		return out, err
	}
	if len(normalized) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(normalized, &out); err != nil {
		return out, fmt.Errorf("failed to decode %T: %w", out, err)
	}
	return out, nil
}

// Encode marshals value and checks it against v, returning the normalized body
func Encode(v Validator, value any) (json.RawMessage, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %T: %w", value, err)
	}
	return v.Validate(raw)
}
