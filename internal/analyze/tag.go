package analyze

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// TagKey is the struct tag read for property metadata:
//
//	Name string `automap:"fullName,groups=admin|read,maxDepth=2,dateFormat=2006-01-02,required"`
//	Hash string `automap:"-"`
const TagKey = "automap"

// Tag is the parsed property metadata of a struct field.
type Tag struct {
	Name       string
	Groups     []string
	MaxDepth   int
	Ignore     bool
	DateFormat string
	Required   bool
	// Err is set when the tag could not be parsed; the resolver reports it.
	Err error
}

// ParseTag reads the automap tag, falling back to the json tag for the name.
func ParseTag(tag reflect.StructTag) Tag {
	var result Tag

	if name, ok := jsonName(tag); ok {
		result.Name = name
	}

	raw, ok := tag.Lookup(TagKey)
	if !ok {
		return result
	}

	if raw == "-" {
		result.Ignore = true
		return result
	}

	parts := strings.Split(raw, ",")
	if parts[0] != "" {
		result.Name = parts[0]
	}

	for _, part := range parts[1:] {
		key, value, _ := strings.Cut(strings.TrimSpace(part), "=")

		switch key {
		case "":
		case "ignore":
			result.Ignore = true
		case "required":
			result.Required = true
		case "groups":
			result.Groups = strings.Split(value, "|")
		case "maxDepth":
			depth, err := strconv.Atoi(value)
			if err != nil || depth < 0 {
				result.Err = fmt.Errorf("invalid maxDepth %q in %s tag", value, TagKey)
				continue
			}

			result.MaxDepth = depth
		case "dateFormat":
			result.DateFormat = value
		default:
			result.Err = fmt.Errorf("unknown option %q in %s tag", key, TagKey)
		}
	}

	return result
}

func jsonName(tag reflect.StructTag) (string, bool) {
	raw, ok := tag.Lookup("json")
	if !ok {
		return "", false
	}

	name, _, _ := strings.Cut(raw, ",")
	if name == "" || name == "-" {
		return "", false
	}

	return name, true
}
