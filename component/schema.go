package component

import (
	"reflect"
	"strings"
)

// GenerateConfigSchema builds a ConfigSchema from a config struct type by
// reading `json` and `schema` field tags. The schema tag is a comma-separated
// list of key:value pairs:
//
//	Script string `json:"script" schema:"type:string,description:Inline repair script,required:true,category:basic"`
//
// Recognized keys: type, description, category, enum (pipe-separated values),
// required (boolean). Fields without a json name or tagged `json:"-"` are
// skipped. Anonymous and unexported fields are skipped.
func GenerateConfigSchema(t reflect.Type) ConfigSchema {
	schema := ConfigSchema{
		Properties: make(map[string]PropertySchema),
		Required:   []string{},
	}

	if t == nil {
		return schema
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return schema
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous || !field.IsExported() {
			continue
		}

		name := jsonFieldName(field)
		if name == "" {
			continue
		}

		prop, required := parseSchemaTag(field.Tag.Get("schema"))
		if prop.Type == "" {
			prop.Type = defaultSchemaType(field.Type)
		}

		schema.Properties[name] = prop
		if required {
			schema.Required = append(schema.Required, name)
		}
	}

	return schema
}

// jsonFieldName extracts the effective JSON field name, or "" if the field
// is excluded from serialization.
func jsonFieldName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return ""
	}
	if tag == "" {
		return field.Name
	}
	name := strings.Split(tag, ",")[0]
	if name == "" {
		return field.Name
	}
	return name
}

// parseSchemaTag parses the schema tag into a PropertySchema and a required flag.
func parseSchemaTag(tag string) (PropertySchema, bool) {
	prop := PropertySchema{}
	required := false

	for _, part := range strings.Split(tag, ",") {
		key, value, found := strings.Cut(part, ":")
		if !found {
			continue
		}
		switch strings.TrimSpace(key) {
		case "type":
			prop.Type = value
		case "description":
			prop.Description = value
		case "category":
			prop.Category = value
		case "enum":
			prop.Enum = strings.Split(value, "|")
			if prop.Type == "" {
				prop.Type = "enum"
			}
		case "required":
			required = value == "true"
		}
	}

	return prop, required
}

// defaultSchemaType maps a Go type to a schema type name.
func defaultSchemaType(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "bool"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "int"
	case reflect.Float32, reflect.Float64:
		return "float"
	case reflect.Slice, reflect.Array:
		return "array"
	default:
		return "object"
	}
}
