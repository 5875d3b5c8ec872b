package pool

import "unsafe"

// Alignment is the boundary DirectBuffers are aligned to.
const Alignment = 4096

// DirectBuffer is a byte buffer whose first byte sits on an Alignment
// boundary. Its address can be handed to code that requires aligned
// memory (O_DIRECT reads, mmap style APIs, native libraries).
type DirectBuffer struct {
	// mem keeps the full (over-allocated) block alive.
	mem  []byte
	data []byte
}

func newDirectBuffer(size int) *DirectBuffer {
	if size == 0 {
		return &DirectBuffer{}
	}

	mem := make([]byte, size+Alignment)
	off := 0
	if rem := int(uintptr(unsafe.Pointer(&mem[0])) & (Alignment - 1)); rem != 0 {
		off = Alignment - rem
	}

	return &DirectBuffer{
		mem:  mem,
		data: mem[off : off+size : off+size],
	}
}

// Bytes returns the usable, aligned part of the buffer.
func (db *DirectBuffer) Bytes() []byte {
	return db.data
}

// Len returns the usable size of the buffer.
func (db *DirectBuffer) Len() int {
	return len(db.data)
}

// Addr returns the address of the first byte (0 for empty buffers).
func (db *DirectBuffer) Addr() uintptr {
	if len(db.data) == 0 {
		return 0
	}

	return uintptr(unsafe.Pointer(&db.data[0]))
}
