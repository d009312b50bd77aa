package routing

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// StripPath removes the query string and fragment from path.
func StripPath(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		return path[:i]
	}
	return path
}

// Query parses the query string of path. Malformed pairs are skipped.
func Query(path string) url.Values {
	if i := strings.IndexByte(path, '#'); i >= 0 {
		path = path[:i]
	}
	_, raw, ok := strings.Cut(path, "?")
	if !ok {
		return url.Values{}
	}
	values, _ := url.ParseQuery(raw)
	return values
}

// WithQuery replaces the query string of path with params (sorted by key).
// An empty params map removes the query.
func WithQuery(path string, params map[string]any) string {
	base := StripPath(path)
	if len(params) == 0 {
		return base
	}
	values := url.Values{}
	for k, v := range params {
		values.Set(k, fmt.Sprint(v))
	}
	return base + "?" + values.Encode()
}

// ParamType selects how a raw parameter is converted.
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeInteger ParamType = "integer"
	TypeFloat   ParamType = "float"
)

// Lookup describes one parameter to extract. The result is stored under Alias when set.
// Missing or unparsable values yield Default.
type Lookup struct {
	Key     string    `json:"key" mapstructure:"key"`
	Default any       `json:"default" mapstructure:"default"`
	Type    ParamType `json:"type" mapstructure:"type"`
	Alias   string    `json:"alias,omitempty" mapstructure:"alias"`
}

func (l Lookup) name() string {
	if l.Alias != "" {
		return l.Alias
	}
	return l.Key
}

// LookupQuery extracts typed values from query parameters.
func LookupQuery(values url.Values, lookups []Lookup) map[string]any {
	return extract(func(key string) (string, bool) {
		if !values.Has(key) {
			return "", false
		}
		return values.Get(key), true
	}, lookups)
}

// LookupParams extracts typed values from bound path parameters.
func LookupParams(params map[string]string, lookups []Lookup) map[string]any {
	return extract(func(key string) (string, bool) {
		v, ok := params[key]
		return v, ok
	}, lookups)
}

// Decode copies extracted values into a tagged struct (mapstructure tags).
func Decode(values map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to build decoder: %w", err)
	}
	if err := dec.Decode(values); err != nil {
		return fmt.Errorf("failed to decode params: %w", err)
	}
	return nil
}

func extract(get func(string) (string, bool), lookups []Lookup) map[string]any {
	result := make(map[string]any, len(lookups))
	for _, l := range lookups {
		raw, ok := get(l.Key)
		if !ok {
			result[l.name()] = l.Default
			continue
		}
		result[l.name()] = convert(raw, l)
	}
	return result
}

func convert(raw string, l Lookup) any {
	switch l.Type {
	case TypeInteger:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return l.Default
		}
		return n
	case TypeFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return l.Default
		}
		return f
	default:
		return raw
	}
}
