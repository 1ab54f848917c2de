package telemetry

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lineBuffer collects Watch output while the client goroutines write to it.
type lineBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (l *lineBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func (l *lineBuffer) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.String()
}

func TestServer_WatchReceivesFrames(t *testing.T) {
	// --- Arrange ---
	srv := NewServer(context.Background())
	mux := http.NewServeMux()
	mux.Handle(Path, srv.Handler())
	hs := httptest.NewServer(mux)
	t.Cleanup(func() {
		srv.Close()
		hs.Close()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := &lineBuffer{}
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, hs.URL, WatchOptions{}, out) }()

	want := Encode(sampleReport()).Summary()

	// --- Act ---
	// Frames emitted before the client joins are lost, so keep emitting.
	require.Eventually(t, func() bool {
		srv.ObserveFrame(ctx, sampleReport())
		return strings.Contains(out.String(), want)
	}, 10*time.Second, 50*time.Millisecond)

	cancel()

	// --- Assert ---
	select {
	case err := <-done:
		assert.NoError(t, err, "cancellation is not an error")
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancellation")
	}
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		assert.Equal(t, want, line)
	}
}

func TestWatch_RejectsRelativeURL(t *testing.T) {
	err := Watch(context.Background(), "localhost:8080", WatchOptions{}, &lineBuffer{})
	assert.ErrorContains(t, err, "must include scheme and host")
}
