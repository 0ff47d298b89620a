// Package pipeio bridges two byte streams, copying in both directions
// until either side ends.
package pipeio

import (
	"fmt"
	"io"
	"sync"
)

// Pipe copies between rwc1 and rwc2 in both directions and blocks until
// one direction ends, then closes both. Copy errors are reported via
// logfunc since the first close makes an error on the other direction
// expected.
func Pipe(rwc1 io.ReadWriteCloser, rwc2 io.ReadWriteCloser, logfunc func(error)) {
	var wg sync.WaitGroup
	var once sync.Once

	shutdown := func() {
		rwc1.Close()
		rwc2.Close()
		wg.Done()
	}
	wg.Add(1)

	copyAll := func(dst io.Writer, src io.Reader, label string) {
		if _, err := io.Copy(dst, src); err != nil {
			logfunc(fmt.Errorf("io.Copy(%s): %w", label, err))
		}
		once.Do(shutdown)
	}

	go copyAll(rwc1, rwc2, "rwc1<-rwc2")
	go copyAll(rwc2, rwc1, "rwc2<-rwc1")

	wg.Wait()
}
