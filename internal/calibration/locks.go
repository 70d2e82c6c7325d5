package calibration

import (
	"fmt"
	"sync"

	"github.com/gofrs/flock"
)

// buildLocks serializes builds of the same product. The in-process mutex
// closes the check-then-build race between workers; the file lock extends the
// guarantee to other processes sharing the calibration directory.
type buildLocks struct {
	mu       sync.Mutex
	products map[string]*sync.Mutex
}

func newBuildLocks() *buildLocks {
	return &buildLocks{products: make(map[string]*sync.Mutex)}
}

// acquire locks the product identity and returns the release function.
func (l *buildLocks) acquire(productPath string) (func(), error) {
	l.mu.Lock()
	m, ok := l.products[productPath]
	if !ok {
		m = &sync.Mutex{}
		l.products[productPath] = m
	}
	l.mu.Unlock()

	m.Lock()
	fileLock := flock.New(productPath + ".lock")
	if err := fileLock.Lock(); err != nil {
		m.Unlock()
		return nil, fmt.Errorf("lock calibration build %s: %w", productPath, err)
	}
	return func() {
		_ = fileLock.Unlock()
		m.Unlock()
	}, nil
}
