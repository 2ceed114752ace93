package validatex

import (
	"errors"
	"reflect"
	"strings"
)

var errNotStruct = errors.New("value must be a struct")

// structFields returns a map of field names to field values for a struct
func structFields(obj any) (map[string]fieldInfo, error) {
	val := reflect.ValueOf(obj)

	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil, errNotStruct
		}
		val = val.Elem()
	}

	if val.Kind() != reflect.Struct {
		return nil, errNotStruct
	}

	typ := val.Type()
	fields := make(map[string]fieldInfo)

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)

		if !field.IsExported() {
			continue
		}

		tag := field.Tag.Get("validatex")
		if tag == "" || tag == "-" {
			continue
		}

		fieldValue := val.Field(i)
		name := jsonName(field)

		fields[name] = fieldInfo{
			Name:  name,
			Value: fieldValue.Interface(),
			Rules: parseTag(tag),
		}

		// Tagged nested structs are walked too; a nil pointer is left to "required".
		nested := fieldValue
		if nested.Kind() == reflect.Ptr {
			if nested.IsNil() {
				continue
			}
			nested = nested.Elem()
		}
		if nested.Kind() != reflect.Struct {
			continue
		}
		nestedFields, err := structFields(nested.Interface())
		if err != nil {
			return nil, err
		}
		for k, v := range nestedFields {
			v.Name = name + "." + k
			fields[v.Name] = v
		}
	}

	return fields, nil
}

// jsonName reports a field by its wire name so errors match the payload keys
func jsonName(field reflect.StructField) string {
	if tag := field.Tag.Get("json"); tag != "" {
		if name, _, _ := strings.Cut(tag, ","); name != "" && name != "-" {
			return name
		}
	}
	return field.Name
}

type fieldInfo struct {
	Name  string
	Value any
	Rules []ruleInfo
}

// ruleInfo stores information about a validation rule
type ruleInfo struct {
	Name  string
	Param string
}

// parseTag parses a validatex tag string into validation rules
func parseTag(tag string) []ruleInfo {
	if tag == "" {
		return nil
	}

	parts := strings.Split(tag, ",")
	rules := make([]ruleInfo, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		name, param, _ := strings.Cut(part, "=")
		rules = append(rules, ruleInfo{Name: name, Param: param})
	}

	return rules
}

// isZero treats blank strings and empty collections as unset
func isZero(value any) bool {
	if value == nil {
		return true
	}

	val := reflect.ValueOf(value)
	switch val.Kind() {
	case reflect.String:
		return strings.TrimSpace(val.String()) == ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return val.Len() == 0
	default:
		return val.IsZero()
	}
}

// dereferenceValue safely dereferences a pointer value
// Returns the dereferenced value and whether it was nil
func dereferenceValue(value any) (any, bool) {
	if value == nil {
		return nil, true
	}

	val := reflect.ValueOf(value)
	if val.Kind() != reflect.Ptr {
		return value, false
	}

	if val.IsNil() {
		return nil, true
	}

	return val.Elem().Interface(), false
}
