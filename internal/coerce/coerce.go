// Package coerce turns semi-structured model output into typed section
// values. Models wrap payloads in markdown fences, emit YAML when asked for
// JSON, nest the payload under a spurious top-level key, vary key casing, and
// stringify numbers and booleans. Unmarshal absorbs all of that and fails
// only when the payload genuinely does not fit the target.
package coerce

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/iancoleman/strcase"
	"gopkg.in/yaml.v3"
)

var fenceRE = regexp.MustCompile("(?s)```(?:json|yaml|yml)?\\s*\\n(.*?)```")

// StripFences extracts the first fenced block if one exists, otherwise
// returns the input trimmed.
func StripFences(s string) string {
	if m := fenceRE.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(s)
}

// Unmarshal decodes raw model output into v, which must be a non-nil pointer.
// section names the expected payload (e.g. "metadata") and drives wrapper
// unwrapping.
func Unmarshal(raw []byte, v any, section string) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("coerce: target must be a non-nil pointer")
	}
	text := StripFences(string(raw))
	if text == "" {
		return fmt.Errorf("coerce: empty payload for %s", section)
	}

	var tree any
	if err := json.Unmarshal([]byte(text), &tree); err != nil {
		if yerr := yaml.Unmarshal([]byte(text), &tree); yerr != nil {
			return fmt.Errorf("coerce: %s payload is neither JSON nor YAML: %w", section, err)
		}
	}
	tree = normalize(tree)
	tree = unwrap(tree, section, rv.Elem().Type())
	if err := assign(tree, rv.Elem()); err != nil {
		return fmt.Errorf("coerce: %s: %w", section, err)
	}
	return nil
}

// normalize rewrites every map key to snake_case and converts YAML's
// map[any]any into map[string]any so the tree has one shape regardless of
// the source codec. Keys that differ only by casing collapse; last one wins.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[normalizeKey(k)] = normalize(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[normalizeKey(fmt.Sprint(k))] = normalize(val)
		}
		return out
	case []any:
		for i := range t {
			t[i] = normalize(t[i])
		}
		return t
	default:
		return v
	}
}

func normalizeKey(k string) string {
	k = strings.TrimSpace(k)
	// Keys that are not identifiers (env var names, URLs) pass through.
	if strings.ContainsAny(k, " ./:") || k == strings.ToUpper(k) {
		return k
	}
	return strcase.ToSnake(k)
}

// unwrap peels a single spurious wrapper key when the payload is nested one
// level deep under the section name or the target type name, e.g.
// {"metadata": {...}} or {"metadata_out": {...}}.
func unwrap(tree any, section string, target reflect.Type) any {
	m, ok := tree.(map[string]any)
	if !ok || len(m) != 1 {
		return tree
	}
	var key string
	var inner any
	for k, v := range m {
		key, inner = k, v
	}
	if _, isMap := inner.(map[string]any); !isMap {
		return tree
	}
	candidates := map[string]bool{
		strcase.ToSnake(section):       true,
		strcase.ToSnake(target.Name()): true,
		"response":                     true,
		"result":                       true,
		"output":                       true,
	}
	snakeKey := strcase.ToSnake(key)
	// Models also wrap in schema class names, e.g. {"MCPStateResponseBuild":
	// {...}}; any single key mentioning the section counts.
	sectionRef := section != "" && strings.Contains(snakeKey, strcase.ToSnake(section))
	if !candidates[snakeKey] && !sectionRef {
		return tree
	}
	// Never unwrap when the key is a real field of the target.
	if fieldByTag(target, strcase.ToSnake(key)) >= 0 {
		return tree
	}
	return inner
}

// assign writes a normalized tree into dst, coercing scalars where the types
// disagree.
func assign(src any, dst reflect.Value) error {
	if src == nil {
		return nil
	}
	switch dst.Kind() {
	case reflect.Pointer:
		if dst.IsNil() {
			dst.Set(reflect.New(dst.Type().Elem()))
		}
		return assign(src, dst.Elem())
	case reflect.Interface:
		dst.Set(reflect.ValueOf(src))
		return nil
	case reflect.Struct:
		return assignStruct(src, dst)
	case reflect.Map:
		return assignMap(src, dst)
	case reflect.Slice:
		return assignSlice(src, dst)
	case reflect.String:
		dst.SetString(toString(src))
		return nil
	case reflect.Bool:
		b, err := toBool(src)
		if err != nil {
			return err
		}
		dst.SetBool(b)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		f, err := toFloat(src)
		if err != nil {
			return err
		}
		dst.SetInt(int64(f))
		return nil
	case reflect.Float32, reflect.Float64:
		f, err := toFloat(src)
		if err != nil {
			return err
		}
		dst.SetFloat(f)
		return nil
	default:
		return fmt.Errorf("unsupported kind %s", dst.Kind())
	}
}

func assignStruct(src any, dst reflect.Value) error {
	m, ok := src.(map[string]any)
	if !ok {
		return fmt.Errorf("expected object, got %T", src)
	}
	t := dst.Type()
	for key, val := range m {
		i := fieldByTag(t, key)
		if i < 0 {
			continue // unknown keys are dropped
		}
		if err := assign(val, dst.Field(i)); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return nil
}

func assignMap(src any, dst reflect.Value) error {
	m, ok := src.(map[string]any)
	if !ok {
		return fmt.Errorf("expected object, got %T", src)
	}
	if dst.IsNil() {
		dst.Set(reflect.MakeMapWithSize(dst.Type(), len(m)))
	}
	elemType := dst.Type().Elem()
	for key, val := range m {
		elem := reflect.New(elemType).Elem()
		if err := assign(val, elem); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		dst.SetMapIndex(reflect.ValueOf(key), elem)
	}
	return nil
}

func assignSlice(src any, dst reflect.Value) error {
	// A lone scalar where a list is expected becomes a one-element list.
	list, ok := src.([]any)
	if !ok {
		list = []any{src}
	}
	out := reflect.MakeSlice(dst.Type(), len(list), len(list))
	for i, item := range list {
		if err := assign(item, out.Index(i)); err != nil {
			return fmt.Errorf("[%d]: %w", i, err)
		}
	}
	dst.Set(out)
	return nil
}

// fieldByTag finds the exported field whose json tag (or snake_cased name)
// matches key. Returns -1 when absent.
func fieldByTag(t reflect.Type, key string) int {
	if t.Kind() != reflect.Struct {
		return -1
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue
		}
		tag := strings.Split(f.Tag.Get("json"), ",")[0]
		if tag == "" {
			tag = strcase.ToSnake(f.Name)
		}
		if tag == key {
			return i
		}
	}
	return -1
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

func toBool(v any) (bool, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(strings.ToLower(t)))
		if err != nil {
			return false, fmt.Errorf("cannot coerce %q to bool", t)
		}
		return b, nil
	case float64:
		return t != 0, nil
	case int:
		return t != 0, nil
	default:
		return false, fmt.Errorf("cannot coerce %T to bool", v)
	}
}

func toFloat(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case int:
		return float64(t), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, fmt.Errorf("cannot coerce %q to number", t)
		}
		return f, nil
	case bool:
		if t {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("cannot coerce %T to number", v)
	}
}
