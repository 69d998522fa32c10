// Package diff computes the minimal set of changed top-level fields between a
// stored record and a proposed partial update. It is pure: used once to decide
// whether an update is worth logging, and once to decide what a notification
// should show.
package diff

import (
	"encoding/json"
	"reflect"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// isoFormat matches JavaScript's Date.toISOString output, which is what the
// existing log readers expect for every instant.
const isoFormat = "2006-01-02T15:04:05.000Z07:00"

// Change is a {from, to} pair of normalized values. From is nil when the
// field had no prior counterpart.
type Change struct {
	From interface{} `json:"from"`
	To   interface{} `json:"to"`
}

// Diff maps field names to their changes
type Diff map[string]Change

// Fields computes the diff between the prior full record and a proposed
// partial update. A field is included iff its normalized prior and proposed
// values are not deep-equal.
func Fields(prior, proposed map[string]interface{}) Diff {
	d := Diff{}
	for key, propVal := range proposed {
		to := Normalize(propVal)
		priorVal, ok := prior[key]
		if !ok {
			d[key] = Change{From: nil, To: to}
			continue
		}
		from := Normalize(priorVal)
		if !Equal(from, to) {
			d[key] = Change{From: from, To: to}
		}
	}
	return d
}

// Equal reports deep equality of two already-normalized values
func Equal(a, b interface{}) bool {
	return reflect.DeepEqual(a, b)
}

// Normalize converts a value into its canonical comparison form: every
// timestamp representation becomes the same ISO-8601 instant string, numeric
// widths are unified, and containers are normalized element-wise. Two
// in-memory representations of the same instant must never register as a
// change.
func Normalize(value interface{}) interface{} {
	switch v := value.(type) {
	case nil:
		return nil
	case time.Time:
		return v.UTC().Format(isoFormat)
	case *time.Time:
		if v == nil {
			return nil
		}
		return v.UTC().Format(isoFormat)
	case primitive.DateTime:
		return v.Time().UTC().Format(isoFormat)
	case primitive.Timestamp:
		return time.Unix(int64(v.T), 0).UTC().Format(isoFormat)
	case string:
		return v
	case bool:
		return v
	case int:
		return int64(v)
	case int8:
		return int64(v)
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	case uint:
		return int64(v)
	case uint8:
		return int64(v)
	case uint16:
		return int64(v)
	case uint32:
		return int64(v)
	case uint64:
		return int64(v)
	case float32:
		return float64(v)
	case float64:
		return v
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return value
		}
		out := make([]interface{}, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = Normalize(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return value
		}
		m := make(map[string]interface{}, rv.Len())
		for _, k := range rv.MapKeys() {
			m[k.String()] = Normalize(rv.MapIndex(k).Interface())
		}
		if iso, ok := normalizeTimestampMap(m); ok {
			return iso
		}
		return m
	case reflect.Ptr:
		if rv.IsNil() {
			return nil
		}
		return Normalize(rv.Elem().Interface())
	case reflect.Struct:
		// Fall back to a JSON round trip so struct payloads compare the same
		// way as their decoded counterparts.
		b, err := json.Marshal(value)
		if err != nil {
			return value
		}
		var out interface{}
		if err := json.Unmarshal(b, &out); err != nil {
			return value
		}
		return Normalize(out)
	}
	return value
}

// normalizeTimestampMap recognizes provider timestamp objects that were
// decoded into plain maps, either {seconds, nanoseconds} or the serialized
// {_seconds, _nanoseconds} form, and collapses them to an ISO instant.
func normalizeTimestampMap(m map[string]interface{}) (string, bool) {
	for _, keys := range [][2]string{{"seconds", "nanoseconds"}, {"_seconds", "_nanoseconds"}} {
		secVal, ok := m[keys[0]]
		if !ok {
			continue
		}
		sec, ok := toInt64(secVal)
		if !ok {
			continue
		}
		var nsec int64
		if nsecVal, ok := m[keys[1]]; ok {
			if n, ok := toInt64(nsecVal); ok {
				nsec = n
			}
		}
		if len(m) > 2 {
			continue
		}
		return time.Unix(sec, nsec).UTC().Format(isoFormat), true
	}
	return "", false
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case float64:
		return int64(n), true
	case string:
		return 0, false
	}
	return 0, false
}
