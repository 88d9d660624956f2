// Package validation checks request bodies against embedded JSON schemas
// before any manager logic runs.
package validation

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"todo-api/internal/apperr"
)

// Имена схем совпадают с файлами в schemas/
const (
	RegisterUser = "register_user"
	SignIn       = "sign_in"
	RefreshToken = "refresh_token"
	CreateTask   = "create_task"
	UpdateTask   = "update_task"
	CreateTag    = "create_tag"
)

const baseURL = "https://todo-api.local/schemas/"

//go:embed schemas/*.json
var schemaFS embed.FS

var quotedName = regexp.MustCompile(`["']([^"']+)["']`)

// Validator держит скомпилированные схемы; безопасен для конкурентного использования.
type Validator struct {
	schemas map[string]*jsonschema.Schema
}

func New() (*Validator, error) {
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return nil, fmt.Errorf("read schemas: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		data, err := schemaFS.ReadFile("schemas/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", e.Name(), err)
		}
		if err := compiler.AddResource(baseURL+e.Name(), bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", e.Name(), err)
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}

	v := &Validator{schemas: make(map[string]*jsonschema.Schema, len(names))}
	for _, name := range names {
		s, err := compiler.Compile(baseURL + name + ".json")
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", name, err)
		}
		v.schemas[name] = s
	}
	return v, nil
}

// Decode проверяет body по схеме и раскладывает его в dst.
// Любая ошибка возвращается как *apperr.ValidationError.
func (v *Validator) Decode(schema string, body []byte, dst interface{}) error {
	s, ok := v.schemas[schema]
	if !ok {
		return fmt.Errorf("unknown schema %q", schema)
	}

	doc, err := parse(body)
	if err != nil {
		return apperr.Invalid("body", "malformed JSON")
	}

	if err := s.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return toValidationError(ve)
		}
		return fmt.Errorf("validate %s: %w", schema, err)
	}

	// схема считает 1.0 целым, encoding/json в int64 его не примет
	if normalizeNumbers(doc) {
		if body, err = json.Marshal(doc); err != nil {
			return fmt.Errorf("re-encode %s: %w", schema, err)
		}
	}

	if err := json.Unmarshal(body, dst); err != nil {
		var ute *json.UnmarshalTypeError
		if errors.As(err, &ute) && ute.Field != "" {
			return apperr.Invalid(ute.Field, fmt.Sprintf("%s is out of range or has the wrong type", ute.Value))
		}
		return apperr.Invalid("body", "malformed JSON")
	}
	return nil
}

// normalizeNumbers заменяет числа вида "3.00" на "3"; возвращает true, если что-то поменялось
func normalizeNumbers(v interface{}) bool {
	changed := false
	switch x := v.(type) {
	case map[string]interface{}:
		for k, e := range x {
			if n, ok := e.(json.Number); ok {
				if i, ok := integral(n); ok {
					x[k] = i
					changed = true
				}
				continue
			}
			changed = normalizeNumbers(e) || changed
		}
	case []interface{}:
		for idx, e := range x {
			if n, ok := e.(json.Number); ok {
				if i, ok := integral(n); ok {
					x[idx] = i
					changed = true
				}
				continue
			}
			changed = normalizeNumbers(e) || changed
		}
	}
	return changed
}

// integral отбрасывает нулевую дробную часть. Экспоненту не трогаем.
func integral(n json.Number) (json.Number, bool) {
	s := string(n)
	dot := strings.IndexByte(s, '.')
	if dot < 0 || strings.ContainsAny(s, "eE") {
		return n, false
	}
	if strings.Trim(s[dot+1:], "0") != "" {
		return n, false
	}
	return json.Number(s[:dot]), true
}

func parse(body []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing data after JSON document")
	}
	return doc, nil
}

func toValidationError(root *jsonschema.ValidationError) *apperr.ValidationError {
	var fields []apperr.FieldError
	seen := map[string]bool{}

	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) > 0 {
			for _, c := range e.Causes {
				walk(c)
			}
			return
		}
		for _, fe := range leafErrors(e) {
			key := fe.Field + "|" + fe.Message
			if !seen[key] {
				seen[key] = true
				fields = append(fields, fe)
			}
		}
	}
	walk(root)

	if len(fields) == 0 {
		fields = append(fields, apperr.FieldError{Field: "body", Message: root.Message})
	}
	sort.SliceStable(fields, func(i, j int) bool { return fields[i].Field < fields[j].Field })
	return &apperr.ValidationError{Fields: fields}
}

func leafErrors(e *jsonschema.ValidationError) []apperr.FieldError {
	prefix := pointerToField(e.InstanceLocation)

	// у required ошибка висит на родителе, имена полей есть только в тексте
	if strings.HasSuffix(e.KeywordLocation, "/required") {
		var out []apperr.FieldError
		for _, m := range quotedName.FindAllStringSubmatch(e.Message, -1) {
			out = append(out, apperr.FieldError{Field: joinField(prefix, m[1]), Message: "is required"})
		}
		if len(out) > 0 {
			return out
		}
	}

	field := prefix
	if field == "" {
		field = "body"
	}
	return []apperr.FieldError{{Field: field, Message: e.Message}}
}

// pointerToField превращает JSON pointer "/a/b" в "a.b"
func pointerToField(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}
	parts := strings.Split(ptr, "/")
	for i, p := range parts {
		p = strings.ReplaceAll(p, "~1", "/")
		parts[i] = strings.ReplaceAll(p, "~0", "~")
	}
	return strings.Join(parts, ".")
}

func joinField(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
