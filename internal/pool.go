// Package internal holds small shared plumbing not worth a public package.
package internal

import (
	"bytes"
	"sync"
)

// BufferPool recycles the buffers used to encode hub snapshots every
// broadcast interval.
var BufferPool = sync.Pool{
	New: func() interface{} {
		return bytes.NewBuffer([]byte{})
	},
}
