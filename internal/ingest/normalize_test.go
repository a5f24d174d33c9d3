package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDate(t *testing.T) {
	assert.Equal(t, "2019-01-15 00:00:00", normalizeDate("2019-01-15"))
	assert.Equal(t, "2021-12-31 00:00:00", normalizeDate("2021-12-31"))

	assert.Nil(t, normalizeDate(nil))
	assert.Nil(t, normalizeDate(""))
	assert.Nil(t, normalizeDate("2019-13-01"))
	assert.Nil(t, normalizeDate("15/01/2019"))
	assert.Nil(t, normalizeDate("2019-01-15T00:00:00Z"))
	assert.Nil(t, normalizeDate(20190115.0))
	assert.Nil(t, normalizeDate(true))
}

func TestBoolFlag(t *testing.T) {
	cases := []struct {
		in   interface{}
		want int
	}{
		{nil, 0},
		{false, 0},
		{true, 1},
		{float64(0), 0},
		{float64(1), 1},
		{float64(-2), 1},
		{"", 0},
		{"x", 1},
		{[]interface{}{}, 0},
		{[]interface{}{"a"}, 1},
		{map[string]interface{}{}, 0},
		{map[string]interface{}{"k": "v"}, 1},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, boolFlag(c.in), "input %#v", c.in)
	}
}

func TestJoinList(t *testing.T) {
	assert.Equal(t, "a; b", joinList([]interface{}{"a", "b"}, "; "))
	assert.Equal(t, "claims;abstract", joinList([]interface{}{"claims", "abstract"}, ";"))
	assert.Equal(t, "plain", joinList("plain", "; "))
	assert.Equal(t, "", joinList([]interface{}{}, "; "))

	// One stray non-string element must not sink the row.
	assert.Equal(t, "a; 2", joinList([]interface{}{"a", float64(2)}, "; "))

	assert.Nil(t, joinList(nil, "; "))
	assert.Nil(t, joinList(float64(3), "; "))
	assert.Nil(t, joinList(map[string]interface{}{}, "; "))
}
