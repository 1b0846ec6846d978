package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	assert.Equal(t, "hello world", Sanitize("  §chello §rworld "))
	assert.Equal(t, "P1", Sanitize(Green("P1")))
}

func TestFilter(t *testing.T) {
	assert.Equal(t, "arena_1", Filter("§a arena_1!", false, '_'))
	assert.Equal(t, "a b", Filter("a b?", true))
	assert.Equal(t, "ab", Filter("a b", false))
}

func TestList(t *testing.T) {
	assert.Equal(t, "", List(nil))
	assert.Equal(t, "a", List([]string{"a"}))
	assert.Equal(t, "a, b and c", List([]string{"a", "b", "c"}))
}
