package cloak

import (
	"reflect"
	"strings"

	"github.com/zoobzio/sentinel"
)

func init() {
	// Register tags with sentinel
	sentinel.Tag("cloak")
	sentinel.Tag("json")
}

// TagSecure marks a struct field for selection in `cloak` tags:
//
//	type User struct {
//	    Name  string `json:"name"`
//	    Email string `json:"email" cloak:"secure"`
//	}
//
// PathsOf[User]() then yields {"email"}, ready to pass to Object.
const TagSecure = "secure"

// PathsOf derives the dot-notation selection paths for type T from its
// `cloak:"secure"` struct tags. Path segments use json tag names when
// present, matching the keys of the object's JSON form. A tagged nested
// struct contributes its own path and is selected whole; untagged nested
// structs are descended into, mirroring the traversal's selection rules.
func PathsOf[T any]() []string {
	spec := sentinel.Scan[T]()
	return collectTaggedPaths(spec, "")
}

// collectTaggedPaths walks field metadata accumulating tagged dot paths.
func collectTaggedPaths(spec sentinel.Metadata, prefix string) []string {
	var paths []string

	for _, field := range spec.Fields {
		name := fieldPathName(field)
		if name == "" {
			continue
		}
		full := joinPath(prefix, name)

		if field.Tags["cloak"] == TagSecure {
			paths = append(paths, full)
			continue
		}

		// Descend into untagged nested structs
		if field.Kind == sentinel.KindStruct {
			if nested := scanNestedType(field.ReflectType); nested != nil {
				paths = append(paths, collectTaggedPaths(*nested, full)...)
			}
			continue
		}

		if field.Kind == sentinel.KindPointer && field.ReflectType.Elem().Kind() == reflect.Struct {
			if nested := scanNestedType(field.ReflectType.Elem()); nested != nil {
				paths = append(paths, collectTaggedPaths(*nested, full)...)
			}
		}
	}

	return paths
}

// fieldPathName resolves the path segment for a field: the json tag name
// when present, the Go field name otherwise. Fields excluded from JSON
// contribute no path.
func fieldPathName(field sentinel.FieldMetadata) string {
	tag, ok := field.Tags["json"]
	if !ok || tag == "" {
		return field.Name
	}

	name, _, _ := strings.Cut(tag, ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}

// scanNestedType scans a nested struct type and returns its metadata.
func scanNestedType(rt reflect.Type) *sentinel.Metadata {
	if spec, ok := sentinel.Lookup(rt.String()); ok {
		return &spec
	}

	if rt.Kind() != reflect.Struct {
		return nil
	}

	spec := sentinel.Metadata{
		TypeName:    rt.Name(),
		PackageName: rt.PkgPath(),
		Fields:      make([]sentinel.FieldMetadata, 0, rt.NumField()),
	}

	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}

		fm := sentinel.FieldMetadata{
			Name:        sf.Name,
			Type:        sf.Type.String(),
			ReflectType: sf.Type,
			Index:       sf.Index,
			Tags:        parseCloakTags(sf.Tag),
		}

		switch sf.Type.Kind() {
		case reflect.Struct:
			fm.Kind = sentinel.KindStruct
		case reflect.Ptr:
			fm.Kind = sentinel.KindPointer
		case reflect.Slice, reflect.Array:
			fm.Kind = sentinel.KindSlice
		case reflect.Map:
			fm.Kind = sentinel.KindMap
		case reflect.Interface:
			fm.Kind = sentinel.KindInterface
		default:
			fm.Kind = sentinel.KindScalar
		}

		spec.Fields = append(spec.Fields, fm)
	}

	return &spec
}

// parseCloakTags extracts the tags this package reads from a struct tag.
func parseCloakTags(tag reflect.StructTag) map[string]string {
	tags := make(map[string]string)
	for _, name := range []string{"cloak", "json"} {
		if val, ok := tag.Lookup(name); ok {
			tags[name] = val
		}
	}
	return tags
}
