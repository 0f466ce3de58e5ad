package app_test

import (
	"math/rand"
	"strings"
	"testing"

	"quiz-rooms/internal/app"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateSkipsTakenCodes(t *testing.T) {
	alloc := app.NewCodeAllocatorWithSource(rand.NewSource(42))

	var rejected []string
	code := alloc.Allocate(func(code string) bool {
		if len(rejected) < 3 {
			rejected = append(rejected, code)
			return true
		}
		return false
	})

	require.Len(t, rejected, 3)
	assert.NotContains(t, rejected, code)
	require.Len(t, code, app.CodeLength)
	for _, c := range code {
		assert.True(t, strings.ContainsRune(app.CodeAlphabet, c), "unexpected char %q", c)
	}
}

func TestAllocateIsReproducibleWithSeed(t *testing.T) {
	free := func(string) bool { return false }
	a := app.NewCodeAllocatorWithSource(rand.NewSource(7))
	b := app.NewCodeAllocatorWithSource(rand.NewSource(7))
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Allocate(free), b.Allocate(free))
	}
}

func TestNormalizeCode(t *testing.T) {
	cases := map[string]string{
		"ab3d":    "AB3D",
		"  Ab3d ": "AB3D",
		"XYZW":    "XYZW",
		"":        "",
	}
	for in, want := range cases {
		assert.Equal(t, want, app.NormalizeCode(in), "input %q", in)
	}
}
