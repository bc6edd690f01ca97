package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEnv(t *testing.T) {
	t.Setenv("MR_TEST_STR", "  value ")
	t.Setenv("MR_TEST_EMPTY", "   ")

	assert.Equal(t, "value", Env("MR_TEST_STR", "def"))
	assert.Equal(t, "def", Env("MR_TEST_EMPTY", "def"))
	assert.Equal(t, "def", Env("MR_TEST_UNSET", "def"))
}

func TestEnvInt(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  int
	}{
		{name: "valid", value: "42", want: 42},
		{name: "padded", value: " 7 ", want: 7},
		{name: "zero falls back", value: "0", want: 50},
		{name: "negative falls back", value: "-3", want: 50},
		{name: "garbage falls back", value: "abc", want: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("MR_TEST_INT", tt.value)
			assert.Equal(t, tt.want, EnvInt("MR_TEST_INT", 50))
		})
	}
}

func TestEnvBool(t *testing.T) {
	t.Setenv("MR_TEST_BOOL", "true")
	assert.True(t, EnvBool("MR_TEST_BOOL", false))

	t.Setenv("MR_TEST_BOOL", "nope")
	assert.True(t, EnvBool("MR_TEST_BOOL", true))
	assert.False(t, EnvBool("MR_TEST_BOOL_UNSET", false))
}

func TestEnvDuration(t *testing.T) {
	t.Setenv("MR_TEST_DUR", "90s")
	assert.Equal(t, 90*time.Second, EnvDuration("MR_TEST_DUR", time.Minute))

	t.Setenv("MR_TEST_DUR", "0")
	assert.Equal(t, time.Duration(0), EnvDuration("MR_TEST_DUR", time.Minute))

	t.Setenv("MR_TEST_DUR", "-1s")
	assert.Equal(t, time.Minute, EnvDuration("MR_TEST_DUR", time.Minute))
}
