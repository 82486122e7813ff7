package progress

import (
	"sync"
)

type recordBuffer struct {
	mu     sync.Mutex
	buffer []*ExecutionRecord
}

func newRecordBuffer() *recordBuffer {
	return &recordBuffer{}
}

func (b *recordBuffer) Add(record *ExecutionRecord) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buffer = append(b.buffer, record)
}

func (b *recordBuffer) Flush() []*ExecutionRecord {
	b.mu.Lock()
	defer b.mu.Unlock()

	flushed := b.buffer
	b.buffer = nil // reset
	return flushed
}

// Requeue 写库失败时放回缓冲区头部
func (b *recordBuffer) Requeue(records []*ExecutionRecord) {
	if len(records) == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buffer = append(records, b.buffer...)
}

func (b *recordBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.buffer)
}
