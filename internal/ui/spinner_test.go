package ui

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerStopsCleanly(t *testing.T) {
	var out syncBuffer
	s := NewSpinner(&out, "waiting for receipt")
	s.Start()
	time.Sleep(100 * time.Millisecond)
	s.Update("still waiting")
	s.StopWithMsg("mined")

	assert.Contains(t, out.String(), "waiting for receipt")
	assert.Contains(t, out.String(), "mined\n")
}
