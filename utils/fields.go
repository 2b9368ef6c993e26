package utils

import (
	"fmt"
	"reflect"
	"strings"
)

// indirect follows pointers and interfaces down to a concrete value.
func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func fieldIndex(t reflect.Type, name string) ([]int, bool) {
	if sf, ok := t.FieldByName(name); ok {
		return sf.Index, true
	}
	sf, ok := t.FieldByNameFunc(func(n string) bool { return strings.EqualFold(n, name) })
	return sf.Index, ok
}

func structField(v reflect.Value, name string) reflect.Value {
	idx, ok := fieldIndex(v.Type(), name)
	if !ok {
		return reflect.Value{}
	}
	f, err := v.FieldByIndexErr(idx)
	if err != nil {
		return reflect.Value{}
	}
	return f
}

func mapKey(v reflect.Value, name string) reflect.Value {
	kt := v.Type().Key()
	if kt.Kind() != reflect.String {
		return reflect.Value{}
	}
	if mv := v.MapIndex(reflect.ValueOf(name).Convert(kt)); mv.IsValid() {
		return mv
	}
	iter := v.MapRange()
	for iter.Next() {
		if strings.EqualFold(iter.Key().String(), name) {
			return iter.Value()
		}
	}
	return reflect.Value{}
}

// Field reads a named member of a struct (or pointer to struct) or a
// string-keyed map. Struct field names match exactly first, then
// case-insensitively.
func Field(record any, name string) (any, bool) {
	v := indirect(reflect.ValueOf(record))
	if !v.IsValid() {
		return nil, false
	}

	var f reflect.Value
	switch v.Kind() {
	case reflect.Struct:
		f = structField(v, name)
	case reflect.Map:
		f = mapKey(v, name)
	default:
		return nil, false
	}
	if !f.IsValid() || !f.CanInterface() {
		return nil, false
	}
	return f.Interface(), true
}

// FieldPath reads a dotted path, stopping with false at the first missing
// or nil hop.
func FieldPath(record any, path []string) (any, bool) {
	cur := record
	for _, name := range path {
		next, ok := Field(cur, name)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// SetField assigns value to a named member of a struct pointer or a map.
// Values are converted when the types are convertible.
func SetField(record any, name string, value any) error {
	rv := reflect.ValueOf(record)
	if rv.Kind() == reflect.Map {
		return setMapKey(rv, name, value)
	}
	v := indirect(rv)
	if !v.IsValid() {
		return fmt.Errorf("cannot set %s on nil record", name)
	}
	switch v.Kind() {
	case reflect.Map:
		return setMapKey(v, name, value)
	case reflect.Struct:
		f := structField(v, name)
		if !f.IsValid() {
			return fmt.Errorf("field %s not found on %s", name, v.Type())
		}
		if !f.CanSet() {
			return fmt.Errorf("field %s on %s is not settable", name, v.Type())
		}
		return assign(f, value)
	}
	return fmt.Errorf("cannot set %s on %T", name, record)
}

func setMapKey(m reflect.Value, name string, value any) error {
	if m.IsNil() {
		return fmt.Errorf("cannot set %s on nil map", name)
	}
	kt := m.Type().Key()
	if kt.Kind() != reflect.String {
		return fmt.Errorf("map key type %s is not a string", kt)
	}
	ev := reflect.New(m.Type().Elem()).Elem()
	if err := assign(ev, value); err != nil {
		return err
	}
	m.SetMapIndex(reflect.ValueOf(name).Convert(kt), ev)
	return nil
}

func assign(dst reflect.Value, value any) error {
	if value == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}
	src := reflect.ValueOf(value)
	switch {
	case src.Type().AssignableTo(dst.Type()):
		dst.Set(src)
	case dst.Kind() == reflect.Pointer && src.Type().AssignableTo(dst.Type().Elem()):
		p := reflect.New(dst.Type().Elem())
		p.Elem().Set(src)
		dst.Set(p)
	case src.Kind() == reflect.Pointer && !src.IsNil() && src.Elem().Type().AssignableTo(dst.Type()):
		dst.Set(src.Elem())
	case src.Kind() == reflect.Slice && dst.Kind() == reflect.Slice:
		out := reflect.MakeSlice(dst.Type(), 0, src.Len())
		for i := 0; i < src.Len(); i++ {
			item := reflect.New(dst.Type().Elem()).Elem()
			if err := assign(item, src.Index(i).Interface()); err != nil {
				return err
			}
			out = reflect.Append(out, item)
		}
		dst.Set(out)
	case src.Type().ConvertibleTo(dst.Type()):
		dst.Set(src.Convert(dst.Type()))
	default:
		return fmt.Errorf("cannot assign %s to %s", src.Type(), dst.Type())
	}
	return nil
}

// Project returns a copy of item holding only the named members. Structs
// come back with every other field zeroed, maps with every other key dropped.
func Project[T any](item T, names []string) T {
	src := reflect.ValueOf(item)
	if !src.IsValid() {
		return item
	}

	switch src.Kind() {
	case reflect.Map:
		if src.IsNil() {
			return item
		}
		out := reflect.MakeMapWithSize(src.Type(), len(names))
		for _, name := range names {
			if v := mapKey(src, name); v.IsValid() {
				out.SetMapIndex(reflect.ValueOf(name).Convert(src.Type().Key()), v)
			}
		}
		return out.Interface().(T)
	case reflect.Pointer:
		if src.IsNil() || src.Elem().Kind() != reflect.Struct {
			return item
		}
		out := reflect.New(src.Elem().Type())
		copyStructFields(out.Elem(), src.Elem(), names)
		return out.Interface().(T)
	case reflect.Struct:
		out := reflect.New(src.Type()).Elem()
		copyStructFields(out, src, names)
		return out.Interface().(T)
	}
	return item
}

func copyStructFields(dst, src reflect.Value, names []string) {
	for _, name := range names {
		idx, ok := fieldIndex(src.Type(), name)
		if !ok {
			continue
		}
		f, err := src.FieldByIndexErr(idx)
		if err != nil {
			continue
		}
		if d, err := dst.FieldByIndexErr(idx); err == nil && d.CanSet() {
			d.Set(f)
		}
	}
}

// Elements returns the items of a slice or array value, or nil for anything else.
func Elements(v any) ([]any, bool) {
	rv := indirect(reflect.ValueOf(v))
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, false
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
