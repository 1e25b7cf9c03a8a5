package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractKeys(t *testing.T) {
	assert.Equal(t, []string{"sk:lock:checkpoint_state"},
		extractKeys("set", []interface{}{"set", "sk:lock:checkpoint_state", "token", "nx"}))

	assert.Equal(t, []string{"sk:lock:checkpoint_state"},
		extractKeys("evalsha", []interface{}{"evalsha", "abc123", 1, "sk:lock:checkpoint_state", "token"}))

	assert.Empty(t, extractKeys("ping", []interface{}{"ping"}))
}
