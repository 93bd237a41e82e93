package utils

import (
	"io"
	"sync"
)

type flusher interface {
	Flush() error
}

// FlushingWriter forwards each write and flushes buffered destinations so log lines appear immediately.
type FlushingWriter struct {
	destination io.Writer
	mutex       sync.Mutex
}

// NewFlushingWriter wraps destination unless it is already a FlushingWriter.
func NewFlushingWriter(destination io.Writer) io.Writer {
	if destination == nil {
		return nil
	}
	if _, alreadyWrapped := destination.(*FlushingWriter); alreadyWrapped {
		return destination
	}
	return &FlushingWriter{destination: destination}
}

// Write delegates to the destination and flushes it when it buffers output.
func (writer *FlushingWriter) Write(payload []byte) (int, error) {
	if writer == nil || writer.destination == nil {
		return 0, nil
	}

	writer.mutex.Lock()
	defer writer.mutex.Unlock()

	writtenByteCount, writeError := writer.destination.Write(payload)
	if writeError != nil {
		return writtenByteCount, writeError
	}

	if bufferedDestination, buffered := writer.destination.(flusher); buffered {
		if flushError := bufferedDestination.Flush(); flushError != nil {
			return writtenByteCount, flushError
		}
	}

	return writtenByteCount, nil
}
