// Package normalize maps stored documents, whatever their historical field
// names, onto the canonical model types consumed by the matching core.
package normalize

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

// ErrDocument is returned when a document cannot be decoded.
var ErrDocument = errors.New("invalid document")

// Document is a raw record as read from a store.
type Document = map[string]any

// aliases maps a canonical key to the accepted field names, in priority order.
type aliases map[string][]string

// fold copies the first present alias of every canonical key into a new map.
func fold(doc Document, table aliases) map[string]any {
	out := make(map[string]any, len(table))
	for canonical, names := range table {
		for _, n := range names {
			if v, ok := doc[n]; ok && !isBlank(v) {
				out[canonical] = v
				break
			}
		}
	}
	return out
}

// foldAll collects every present alias of a key, used for identifier sets.
func foldAll(doc Document, names ...string) []string {
	var out []string
	seen := map[string]bool{}
	for _, n := range names {
		for _, s := range toStrings(doc[n]) {
			if s != "" && !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// decode runs a weakly typed mapstructure decode with the hooks needed for
// stored documents: timestamps in several encodings, yes/no flags and
// delimited lists.
func decode(in map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		TagName:          "doc",
		Result:           out,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			timeHook,
			boolHook,
			listHook,
		),
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(in); err != nil {
		return fmt.Errorf("%w: %v", ErrDocument, err)
	}
	return nil
}

var (
	timeType    = reflect.TypeOf(time.Time{})
	stringsType = reflect.TypeOf([]string{})
)

func timeHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != timeType {
		return data, nil
	}
	t, ok := toTime(data)
	if !ok {
		return nil, fmt.Errorf("cannot read %v as a timestamp", data)
	}
	return t, nil
}

func boolHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.Bool || from.Kind() != reflect.String {
		return data, nil
	}
	switch strings.ToLower(strings.TrimSpace(data.(string))) {
	case "yes", "y", "true", "1", "x":
		return true, nil
	default:
		return false, nil
	}
}

func listHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != stringsType {
		return data, nil
	}
	if from.Kind() == reflect.String {
		return splitAny(data.(string)), nil
	}
	return data, nil
}

func splitAny(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
}

// toTime accepts time values, strings in common layouts, epoch milliseconds
// and {seconds, nanoseconds} maps as written by document databases.
func toTime(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, !x.IsZero()
	case *time.Time:
		if x == nil {
			return time.Time{}, false
		}
		return *x, !x.IsZero()
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.UnixMilli(ms), true
		}
		return time.Time{}, false
	case int:
		return time.UnixMilli(int64(x)), true
	case int64:
		return time.UnixMilli(x), true
	case float64:
		return time.UnixMilli(int64(x)), true
	case map[string]any:
		sec, okS := firstNumber(x, "seconds", "_seconds")
		if !okS {
			return time.Time{}, false
		}
		nsec, _ := firstNumber(x, "nanoseconds", "_nanoseconds")
		return time.Unix(sec, nsec), true
	default:
		return time.Time{}, false
	}
}

func firstNumber(m map[string]any, keys ...string) (int64, bool) {
	for _, k := range keys {
		switch n := m[k].(type) {
		case int:
			return int64(n), true
		case int64:
			return n, true
		case float64:
			return int64(n), true
		}
	}
	return 0, false
}

// toStrings reads a string, a delimited string or a list of scalars.
func toStrings(v any) []string {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		return splitAny(x)
	case []string:
		return x
	case []any:
		out := make([]string, 0, len(x))
		for _, it := range x {
			if s := strings.TrimSpace(fmt.Sprint(it)); s != "" && it != nil {
				out = append(out, s)
			}
		}
		return out
	default:
		return []string{fmt.Sprint(x)}
	}
}

// toString renders a scalar identifier as a string.
func toString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}
