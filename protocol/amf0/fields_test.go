package amf0

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type shadowInner struct {
	Name  string `amf0:"name"`
	Depth int    `amf0:"depth"`
}

type shadowOuter struct {
	shadowInner
	Name string `amf0:"name"`
}

func TestStructInfoCached(t *testing.T) {
	typ := reflect.TypeOf(shadowOuter{})
	first, err := cachedStructInfo(typ)
	require.NoError(t, err)
	second, err := cachedStructInfo(typ)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestStructInfoShadowing(t *testing.T) {
	info, err := cachedStructInfo(reflect.TypeOf(shadowOuter{}))
	require.NoError(t, err)
	require.Len(t, info.fields, 2)

	f, ok := info.lookup("name")
	require.True(t, ok)
	assert.Equal(t, []int{1}, f.index)

	f, ok = info.lookup("DEPTH")
	require.True(t, ok)
	assert.Equal(t, []int{0, 1}, f.index)

	_, ok = info.lookup("missing")
	assert.False(t, ok)
}

func TestTagOptions(t *testing.T) {
	name, opts := parseTag("rate,omitempty,variant")
	assert.Equal(t, "rate", name)
	assert.True(t, opts.contains("omitempty"))
	assert.True(t, opts.contains("variant"))
	assert.False(t, opts.contains("rest"))

	name, opts = parseTag("plain")
	assert.Equal(t, "plain", name)
	assert.False(t, opts.contains("omitempty"))
}
