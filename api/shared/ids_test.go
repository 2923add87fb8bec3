/* ids_test.go
 * Contains unit tests for ids.go
 */

package shared

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

// region NormalizeID tests

func TestNormalizeID_NumericForms(t *testing.T) {
	inputs := []interface{}{1, int32(1), int64(1), uint(1), float64(1), float32(1), "1", " 1 ", "1.0", json.Number("1"), ID("1")}
	for _, in := range inputs {
		id, ok := NormalizeID(in)
		assert.True(t, ok, "input %v (%T)", in, in)
		assert.Equal(t, ID("1"), id, "input %v (%T)", in, in)
	}
}

func TestNormalizeID_NonNumericString(t *testing.T) {
	id, ok := NormalizeID("team-liquid")
	assert.True(t, ok)
	assert.Equal(t, ID("team-liquid"), id)
}

func TestNormalizeID_FractionalFloat(t *testing.T) {
	id, ok := NormalizeID(1.5)
	assert.True(t, ok)
	assert.Equal(t, ID("1.5"), id)
}

func TestNormalizeID_Invalid(t *testing.T) {
	for _, in := range []interface{}{nil, "", "   ", []string{"1"}, map[string]int{}} {
		id, ok := NormalizeID(in)
		assert.False(t, ok)
		assert.Equal(t, ID(""), id)
	}
}

func TestNormalizeIDs_DropsInvalidAndDuplicates(t *testing.T) {
	ids := NormalizeIDs([]interface{}{1, "1", "", int32(26), nil, "26", 3})
	assert.Equal(t, []ID{"1", "26", "3"}, ids)
}

// endregion

// region ID JSON tests

func TestID_UnmarshalNumberAndString(t *testing.T) {
	var payload struct {
		A ID `json:"a"`
		B ID `json:"b"`
		C ID `json:"c"`
	}
	err := json.Unmarshal([]byte(`{"a": 4198, "b": "4198", "c": null}`), &payload)

	assert.NoError(t, err)
	assert.Equal(t, ID("4198"), payload.A)
	assert.Equal(t, payload.A, payload.B)
	assert.Equal(t, ID(""), payload.C)
}

func TestID_MarshalsAsString(t *testing.T) {
	b, err := json.Marshal(struct {
		ID ID `json:"id"`
	}{ID: "12"})

	assert.NoError(t, err)
	assert.Equal(t, `{"id":"12"}`, string(b))
}

// endregion

func TestIDSet_SkipsEmpty(t *testing.T) {
	set := IDSet([]ID{"1", "", "2"})
	assert.Len(t, set, 2)
	assert.True(t, set["1"])
	assert.False(t, set[""])
}
