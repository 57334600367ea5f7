package session

import (
	"sync"

	"go.uber.org/zap"
)

// fakeSender records every message pushed to it, for assertions.
type fakeSender struct {
	mu       sync.Mutex
	messages []interface{}
}

func (f *fakeSender) Send(v interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, v)
}

func (f *fakeSender) all() []interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]interface{}, len(f.messages))
	copy(out, f.messages)
	return out
}

func testClock() func() int64 {
	var n int64
	return func() int64 {
		n++
		return n
	}
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}
