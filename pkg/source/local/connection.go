package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Driver tests reachability of file-backed sources. A connection ref
// names a directory under the source root; the source is reachable
// when the directory exists and is readable.
type Driver struct {
	Root string
}

func (d Driver) Test(ctx context.Context, connectionRef string, _ map[string]string, timeout time.Duration) (bool, time.Duration, string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	path := filepath.Join(d.Root, filepath.Clean(strings.TrimPrefix(connectionRef, "file://")))

	start := time.Now()
	done := make(chan error, 1)
	go func() {
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			err = fmt.Errorf("%s is not a directory", path)
		}
		done <- err
	}()

	select {
	case <-ctx.Done():
		return false, timeout, "", ctx.Err()
	case err := <-done:
		latency := time.Since(start)
		if err != nil {
			return false, latency, err.Error(), nil
		}
		return true, latency, "", nil
	}
}
