package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeKVs_RedactsSecrets(t *testing.T) {
	got := sanitizeKVs([]interface{}{"api_key", "sk-123", "session_id", "abc", "Authorization", "Bearer x"})

	assert.Equal(t, []interface{}{"api_key", "[REDACTED]", "session_id", "abc", "Authorization", "[REDACTED]"}, got)
}

func TestSanitizeKVs_OddLength(t *testing.T) {
	got := sanitizeKVs([]interface{}{"module_count", 3, "dangling"})

	assert.Equal(t, []interface{}{"module_count", 3, "dangling"}, got)
}
