package app

import (
	"math/rand"
	"strings"
	"time"
)

const (
	// CodeAlphabet leaves out I, O, 0 and 1.
	CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	CodeLength   = 4
)

// CodeAllocator generates short room codes. It is not safe for concurrent use;
// QuizService calls it under its lock.
type CodeAllocator struct {
	rnd *rand.Rand
}

func NewCodeAllocator() *CodeAllocator {
	return NewCodeAllocatorWithSource(rand.NewSource(time.Now().UnixNano()))
}

// NewCodeAllocatorWithSource is used by tests for reproducible codes.
func NewCodeAllocatorWithSource(src rand.Source) *CodeAllocator {
	return &CodeAllocator{rnd: rand.New(src)}
}

// Allocate draws codes until taken reports one as free. There is no retry bound:
// 32^4 codes make a collision loop practically impossible at realistic room counts.
func (a *CodeAllocator) Allocate(taken func(code string) bool) string {
	for {
		code := a.generate()
		if !taken(code) {
			return code
		}
	}
}

func (a *CodeAllocator) generate() string {
	var b strings.Builder
	b.Grow(CodeLength)
	for i := 0; i < CodeLength; i++ {
		b.WriteByte(CodeAlphabet[a.rnd.Intn(len(CodeAlphabet))])
	}
	return b.String()
}

// NormalizeCode makes room codes case-insensitive.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
