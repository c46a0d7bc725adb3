package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyIsOrderIndependent(t *testing.T) {
	a := map[string]any{"a": 1, "b": 2}
	b := map[string]any{"b": 2, "a": 1}
	assert.Equal(t, Key(a), Key(b))

	nested := map[string]any{"filters": map[string]any{"partner": "WorkBank", "product": "Consignado"}}
	sameNested := map[string]any{"filters": map[string]any{"product": "Consignado", "partner": "WorkBank"}}
	assert.Equal(t, Key(nested), Key(sameNested))
}

func TestKeyStringPassthrough(t *testing.T) {
	assert.Equal(t, "dashboard-insights", Key("dashboard-insights"))
}

func TestSetGetDeleteClear(t *testing.T) {
	c := New(time.Minute)

	key := map[string]any{"type": "dashboard", "partner": "Yuppie"}
	c.Set(key, 42)

	got, ok := c.Get(map[string]any{"partner": "Yuppie", "type": "dashboard"})
	assert.True(t, ok)
	assert.Equal(t, 42, got)

	c.Delete(key)
	_, ok = c.Get(key)
	assert.False(t, ok)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Clear()
	_, ok = c.Get("a")
	assert.False(t, ok)
}

func TestLazyExpiry(t *testing.T) {
	c := New(time.Minute)
	c.SetTTL("short-lived", "value", 10*time.Millisecond)

	_, ok := c.Get("short-lived")
	assert.True(t, ok)

	time.Sleep(25 * time.Millisecond)
	_, ok = c.Get("short-lived")
	assert.False(t, ok)
}
