package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHookNameShortensQualifiedClosures(t *testing.T) {
	cases := map[string]string{
		"github.com/tigerroll/vacationspots/internal/app.Run.func3":     "app.Run",
		"github.com/tigerroll/vacationspots/internal/app.Run.func5.1":   "app.Run",
		"github.com/tigerroll/vacationspots/internal/app.runMigrations": "app.runMigrations",
		"main.main": "main.main",
		"":          "",
	}
	for in, want := range cases {
		assert.Equal(t, want, hookName(in), "input %q", in)
	}
}
