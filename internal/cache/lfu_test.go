package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_LFU_GetPut(t *testing.T) {
	assert := assert.New(t)

	c := New(4)
	c.Put("a", 1)
	c.Put("b", 2)

	v, ok := c.Get("a")
	assert.True(ok)
	assert.Equal(1, v)

	_, ok = c.Get("missing")
	assert.False(ok)

	assert.Equal(2, c.Len())
}

func Test_LFU_Put_overwritesExisting(t *testing.T) {
	assert := assert.New(t)

	c := New(4)
	c.Put("a", 1)
	c.Put("a", 2)

	v, ok := c.Get("a")
	assert.True(ok)
	assert.Equal(2, v)
	assert.Equal(1, c.Len())
}

func Test_LFU_Put_evictsLeastFrequentlyUsed(t *testing.T) {
	assert := assert.New(t)

	c := New(2)
	c.Put("a", 1)
	c.Put("b", 2)

	// hit "a" twice so "b" is the coldest entry
	c.Get("a")
	c.Get("a")

	c.Put("c", 3)

	_, aOK := c.Get("a")
	_, bOK := c.Get("b")
	_, cOK := c.Get("c")

	assert.True(aOK, "most-frequently-used entry should survive eviction")
	assert.False(bOK, "least-frequently-used entry should have been evicted")
	assert.True(cOK, "newly inserted entry should be present")
	assert.Equal(2, c.Len())
}

func Test_New_nonPositiveCapacity_fallsBackToDefault(t *testing.T) {
	assert := assert.New(t)

	c := New(0)
	assert.Equal(DefaultCapacity, c.capacity)

	c = New(-5)
	assert.Equal(DefaultCapacity, c.capacity)
}
