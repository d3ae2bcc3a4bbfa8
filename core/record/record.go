// Package record translates flat records between the store shape (snake_case keys, as
// columns are named) and the application shape (camelCase keys, as JSON fields are named).
package record

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// Record is a flat record: keys map to nil, primitives or arrays of primitives.
type Record = map[string]interface{}

// ToApplicationShape returns a new record where every snake_case key is also available under its
// camelCase name. The original key is kept so readers of either convention keep working.
// Values are copied as is: nested values are never walked. Applying it twice yields the same
// record as applying it once.
func ToApplicationShape(rec Record) Record {
	if rec == nil {
		return nil
	}
	out := make(Record, len(rec)*2)
	for k, v := range rec {
		out[k] = v
	}
	for k, v := range rec {
		if camel := CamelCase(k); camel != k {
			if _, ok := rec[camel]; !ok {
				out[camel] = v
			}
		}
	}
	return out
}

// ToStoreShape returns a new record holding only the keys present in partial, in snake_case.
// When both spellings of a field are present the camelCase value wins.
func ToStoreShape(partial Record) Record {
	if partial == nil {
		return nil
	}
	out := make(Record, len(partial))
	for k, v := range partial {
		snake := SnakeCase(k)
		if snake == k {
			if _, set := out[snake]; set {
				continue // already set from the camelCase key
			}
		}
		out[snake] = v
	}
	return out
}

// CamelCase converts a snake_case key to camelCase ("start_date" -> "startDate").
// Keys without underscores are returned unchanged. An underscore followed by a digit is kept
// ("line_1" stays "line_1") since digits have no upper case for SnakeCase to split on.
func CamelCase(key string) string {
	if !strings.Contains(key, "_") {
		return key
	}
	var b strings.Builder
	b.Grow(len(key))
	upper := false
	for i, r := range key {
		switch {
		case r == '_':
			// a leading underscore is kept, an inner one capitalizes the next letter
			if i == 0 || (i+1 < len(key) && unicode.IsDigit(rune(key[i+1]))) {
				b.WriteRune(r)
			} else {
				upper = true
			}
		case upper:
			b.WriteRune(unicode.ToUpper(r))
			upper = false
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SnakeCase converts a camelCase key to snake_case ("startDate" -> "start_date").
// Keys without upper case letters are returned unchanged.
func SnakeCase(key string) string {
	if strings.IndexFunc(key, unicode.IsUpper) < 0 {
		return key
	}
	var b strings.Builder
	b.Grow(len(key) + 4)
	for i, r := range key {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Encode converts v, a struct with camelCase JSON tags, to a store shaped record.
// Numbers are kept as json.Number; fields omitted by their JSON encoding are absent.
func Encode(v interface{}) (Record, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "marshalling record")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var rec Record
	if err = dec.Decode(&rec); err != nil {
		return nil, errors.Wrap(err, "decoding record")
	}
	return ToStoreShape(rec), nil
}

// Decode fills dest, a pointer to a struct with camelCase JSON tags, from a store shaped record.
func Decode(rec Record, dest interface{}) error {
	data, err := json.Marshal(ToApplicationShape(rec))
	if err != nil {
		return errors.Wrap(err, "marshalling record")
	}
	if err = json.Unmarshal(data, dest); err != nil {
		return errors.Wrap(err, "unmarshalling record")
	}
	return nil
}
