package system

import (
	"sync"
)

// BufferPool повторно использует байтовые буферы размером с кадр
// для снижения нагрузки на Garbage Collector (GC) при кодировании.
type BufferPool struct {
	pools map[int]*sync.Pool
	mu    sync.RWMutex
}

var globalPool = &BufferPool{
	pools: make(map[int]*sync.Pool),
}

// GetBuffer возвращает буфер длины size из пула или создает новый,
// если в пуле нет подходящего по размеру.
func GetBuffer(size int) []byte {
	return globalPool.Get(size)
}

// PutBuffer возвращает буфер в пул для повторного использования.
func PutBuffer(buf []byte) {
	globalPool.Put(buf)
}

func (p *BufferPool) Get(size int) []byte {
	p.mu.RLock()
	pool, exists := p.pools[size]
	p.mu.RUnlock()

	if !exists {
		p.mu.Lock()
		// Double check
		pool, exists = p.pools[size]
		if !exists {
			pool = &sync.Pool{
				New: func() interface{} {
					b := make([]byte, size)
					return &b
				},
			}
			p.pools[size] = pool
		}
		p.mu.Unlock()
	}

	return *(pool.Get().(*[]byte))
}

func (p *BufferPool) Put(buf []byte) {
	if buf == nil {
		return
	}
	size := len(buf)
	p.mu.RLock()
	pool, exists := p.pools[size]
	p.mu.RUnlock()

	if exists {
		pool.Put(&buf)
	}
}
