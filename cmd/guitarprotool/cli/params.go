// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// FlagBinder is a params field, or a persistent flag group, that
// registers its own flags instead of being described by struct tags.
type FlagBinder interface {
	AddFlags(flagSet *pflag.FlagSet)
}

// BindFlags registers a flag on flagSet for every tagged field of the
// struct params points to.
//
// A field is bound when it carries flag:"name" or flag:"name,x", where x
// is a one-letter shorthand. desc:"..." is the help text and
// default:"..." the default, parsed as the field's type.
//
// Field types may be string, bool, int, float64, []string (comma
// separated) or anything whose pointer is an [encoding.TextUnmarshaler],
// such as drift.Matching. Struct fields implementing [FlagBinder] bind
// themselves. Other embedded structs, [JSONOutput] among them, are
// walked recursively.
func BindFlags(params any, flagSet *pflag.FlagSet) error {
	value := reflect.ValueOf(params)
	if value.Kind() != reflect.Pointer || value.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("params must be a pointer to a struct, got %T", params)
	}
	return bindStruct(value.Elem(), flagSet)
}

func bindStruct(structValue reflect.Value, flagSet *pflag.FlagSet) error {
	for i := range structValue.NumField() {
		field := structValue.Type().Field(i)
		fieldValue := structValue.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if field.IsExported() {
				if binder, ok := fieldValue.Addr().Interface().(FlagBinder); ok {
					binder.AddFlags(flagSet)
					continue
				}
			}
			if field.Anonymous {
				if err := bindStruct(fieldValue, flagSet); err != nil {
					return fmt.Errorf("embedded %s: %w", field.Name, err)
				}
				continue
			}
		}

		tag, ok := field.Tag.Lookup("flag")
		if !ok || tag == "" {
			continue
		}
		name, shorthand, _ := strings.Cut(tag, ",")
		spec := flagSpec{
			name:         name,
			shorthand:    shorthand,
			usage:        field.Tag.Get("desc"),
			defaultValue: field.Tag.Get("default"),
		}
		if err := spec.bind(fieldValue, flagSet); err != nil {
			return fmt.Errorf("field %s: %w", field.Name, err)
		}
	}
	return nil
}

// flagSpec is one tagged field's flag definition.
type flagSpec struct {
	name, shorthand, usage, defaultValue string
}

func (s flagSpec) bind(fieldValue reflect.Value, flagSet *pflag.FlagSet) error {
	var err error
	switch target := fieldValue.Addr().Interface().(type) {
	case *string:
		flagSet.StringVarP(target, s.name, s.shorthand, s.defaultValue, s.usage)
	case *bool:
		var value bool
		if value, err = parseDefault(s.defaultValue, strconv.ParseBool); err == nil {
			flagSet.BoolVarP(target, s.name, s.shorthand, value, s.usage)
		}
	case *int:
		var value int
		if value, err = parseDefault(s.defaultValue, strconv.Atoi); err == nil {
			flagSet.IntVarP(target, s.name, s.shorthand, value, s.usage)
		}
	case *float64:
		var value float64
		if value, err = parseDefault(s.defaultValue, parseFloat); err == nil {
			flagSet.Float64VarP(target, s.name, s.shorthand, value, s.usage)
		}
	case *[]string:
		var value []string
		if s.defaultValue != "" {
			value = strings.Split(s.defaultValue, ",")
		}
		flagSet.StringSliceVarP(target, s.name, s.shorthand, value, s.usage)
	case encoding.TextUnmarshaler:
		if s.defaultValue != "" {
			err = target.UnmarshalText([]byte(s.defaultValue))
		}
		if err == nil {
			flagSet.VarP(&textValue{target: target, typeName: fieldValue.Type().Name()}, s.name, s.shorthand, s.usage)
		}
	default:
		return fmt.Errorf("--%s: unsupported type %s", s.name, fieldValue.Type())
	}
	if err != nil {
		return fmt.Errorf("default for --%s: %w", s.name, err)
	}
	return nil
}

func parseFloat(s string) (float64, error) { return strconv.ParseFloat(s, 64) }

// parseDefault returns the zero value for an empty default tag.
func parseDefault[T any](s string, parse func(string) (T, error)) (T, error) {
	if s == "" {
		var zero T
		return zero, nil
	}
	return parse(s)
}

// textValue is the [pflag.Value] of a text-unmarshalled field. Without
// a default tag the field keeps its current value.
type textValue struct {
	target   encoding.TextUnmarshaler
	typeName string
}

func (v *textValue) Set(text string) error { return v.target.UnmarshalText([]byte(text)) }

func (v *textValue) Type() string { return strings.ToLower(v.typeName) }

func (v *textValue) String() string {
	marshaler, ok := v.target.(encoding.TextMarshaler)
	if !ok {
		return ""
	}
	text, err := marshaler.MarshalText()
	if err != nil {
		return ""
	}
	return string(text)
}
