package amf0

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/patrickmn/go-cache"
)

// structCache holds the field layout of every struct type seen by the
// driver, keyed by typeKey
var structCache = cache.New(cache.NoExpiration, 0)

// field is one encodable struct field or union arm
type field struct {
	name      string
	index     []int
	typ       reflect.Type
	omitEmpty bool
	// unit is set on a bool union arm
	unit bool
}

// structInfo is the cached layout of a struct type
type structInfo struct {
	fields []field
	byName map[string]int
	// rest is the index of the catch-all Object field, nil if absent
	rest []int
	// arms is non-empty for a union struct
	arms []field
}

func (s *structInfo) union() bool { return len(s.arms) > 0 }

// lookup finds the field for a wire key, exact match first
func (s *structInfo) lookup(key string) (*field, bool) {
	if i, ok := s.byName[key]; ok {
		return &s.fields[i], true
	}
	for i := range s.fields {
		if strings.EqualFold(s.fields[i].name, key) {
			return &s.fields[i], true
		}
	}
	return nil, false
}

func (s *structInfo) arm(name string) (*field, bool) {
	for i := range s.arms {
		if s.arms[i].name == name {
			return &s.arms[i], true
		}
	}
	return nil, false
}

// typeKey names t uniquely, local types sharing a name differ by address
func typeKey(t reflect.Type) string {
	return fmt.Sprintf("%s@%p", t, t)
}

func cachedStructInfo(t reflect.Type) (*structInfo, error) {
	key := typeKey(t)
	if v, found := structCache.Get(key); found {
		return v.(*structInfo), nil
	}
	info, err := buildStructInfo(t)
	if err != nil {
		return nil, err
	}
	structCache.SetDefault(key, info)
	return info, nil
}

func buildStructInfo(t reflect.Type) (*structInfo, error) {
	info := &structInfo{byName: make(map[string]int)}
	var all []field
	if err := collectFields(t, nil, info, &all); err != nil {
		return nil, err
	}

	// a shallower field hides a deeper one with the same name
	for _, f := range all {
		if i, dup := info.byName[f.name]; dup {
			if len(f.index) < len(info.fields[i].index) {
				info.fields[i] = f
			}
			continue
		}
		info.byName[f.name] = len(info.fields)
		info.fields = append(info.fields, f)
	}
	return info, nil
}

func collectFields(t reflect.Type, index []int, info *structInfo, all *[]field) error {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag := sf.Tag.Get("amf0")
		if tag == "-" {
			continue
		}
		name, opts := parseTag(tag)
		idx := make([]int, len(index)+1)
		copy(idx, index)
		idx[len(index)] = i

		if sf.Anonymous && name == "" && sf.Type.Kind() == reflect.Struct && opts == "" {
			if err := collectFields(sf.Type, idx, info, all); err != nil {
				return err
			}
			continue
		}
		if sf.PkgPath != "" {
			// unexported
			continue
		}
		if name == "" {
			name = sf.Name
		}

		f := field{name: name, index: idx, typ: sf.Type, omitEmpty: opts.contains("omitempty")}
		switch {
		case opts.contains("rest"):
			if sf.Type != objectType {
				return &UnsupportedTypeError{Type: "rest field " + sf.Name + " of type " + sf.Type.String()}
			}
			info.rest = idx
		case opts.contains("variant"):
			switch sf.Type.Kind() {
			case reflect.Bool:
				f.unit = true
			case reflect.Ptr:
			default:
				return &UnsupportedTypeError{Type: "variant arm " + sf.Name + " of type " + sf.Type.String()}
			}
			info.arms = append(info.arms, f)
		default:
			*all = append(*all, f)
		}
	}
	return nil
}

// tagOptions is the string following a comma in a struct field's tag
type tagOptions string

func parseTag(tag string) (string, tagOptions) {
	if i := strings.Index(tag, ","); i != -1 {
		return tag[:i], tagOptions(tag[i+1:])
	}
	return tag, ""
}

func (o tagOptions) contains(name string) bool {
	s := string(o)
	for s != "" {
		var next string
		if i := strings.Index(s, ","); i >= 0 {
			s, next = s[:i], s[i+1:]
		}
		if s == name {
			return true
		}
		s = next
	}
	return false
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Interface, reflect.Ptr:
		return v.IsNil()
	}
	return false
}
