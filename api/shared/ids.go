/* ids.go
 * Contains the canonical identifier type. The match provider sends numeric ids while stored documents and
 * request bodies often carry them as strings, so every id is normalised to one representation on ingress
 */

package shared

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ID is the canonical, comparable identifier for matches, teams, leagues and videogames
type ID string

func (id ID) String() string {
	return string(id)
}

// UnmarshalJSON accepts both JSON numbers and strings
func (id *ID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*id = ""
		return nil
	}
	var raw interface{}
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	normalized, _ := NormalizeID(raw)
	*id = normalized
	return nil
}

// NormalizeID converts a raw identifier into an ID.
// Preconditions: Receives a value decoded from JSON, BSON or user input
// Postconditions: Returns the canonical ID and true, or an empty ID and false if the value cannot be an identifier
func NormalizeID(v interface{}) (ID, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case ID:
		return normalizeString(string(val))
	case string:
		return normalizeString(val)
	case json.Number:
		return normalizeString(val.String())
	case int:
		return ID(strconv.FormatInt(int64(val), 10)), true
	case int32:
		return ID(strconv.FormatInt(int64(val), 10)), true
	case int64:
		return ID(strconv.FormatInt(val, 10)), true
	case uint:
		return ID(strconv.FormatUint(uint64(val), 10)), true
	case uint64:
		return ID(strconv.FormatUint(val, 10)), true
	case float32:
		return normalizeFloat(float64(val))
	case float64:
		return normalizeFloat(val)
	default:
		return "", false
	}
}

// NormalizeIDs normalises a slice of raw identifiers, dropping the ones that cannot be converted and duplicates
func NormalizeIDs(values []interface{}) []ID {
	out := make([]ID, 0, len(values))
	seen := make(map[ID]bool, len(values))
	for _, v := range values {
		id, ok := NormalizeID(v)
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// IDSet builds a lookup set from a slice of ids
func IDSet(ids []ID) map[ID]bool {
	set := make(map[ID]bool, len(ids))
	for _, id := range ids {
		if id != "" {
			set[id] = true
		}
	}
	return set
}

func normalizeString(s string) (ID, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	// Numeric strings such as "42.0" or "042" collapse to the same id as the number 42
	if f, err := strconv.ParseFloat(s, 64); err == nil && isIntegral(f) && !strings.ContainsAny(s, "eE") {
		return ID(strconv.FormatInt(int64(f), 10)), true
	}
	return ID(s), true
}

func normalizeFloat(f float64) (ID, bool) {
	if !isIntegral(f) {
		return ID(strconv.FormatFloat(f, 'f', -1, 64)), true
	}
	return ID(strconv.FormatInt(int64(f), 10)), true
}

func isIntegral(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f) && f == math.Trunc(f) && math.Abs(f) < 1<<53
}
