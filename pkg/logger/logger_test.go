// pkg/logger/logger_test.go
package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestSetLevel(t *testing.T) {
	defer SetLevel("info")

	SetLevel("debug")
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	SetLevel("warn")
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
}

func TestSetLevelUnknownFallsBackToInfo(t *testing.T) {
	defer SetLevel("info")

	SetLevel("loudest")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
