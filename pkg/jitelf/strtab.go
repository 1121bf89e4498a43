package jitelf

import (
	"jitelf/pkg/utils"

	"golang.org/x/sys/unix"
)

// StringTable is an append-only buffer of NUL-terminated names. Offsets
// handed out by Insert stay valid for the table's whole lifetime because
// finalized headers embed them.
type StringTable struct {
	buf []byte
}

// NewStringTable seeds the buffer with a single NUL so that offset 0 always
// names the empty string.
func NewStringTable() StringTable {
	return StringTable{buf: []byte{0}}
}

// Insert appends name plus its terminator and returns the starting offset.
// Names must not contain a NUL byte.
func (t *StringTable) Insert(name string) uint32 {
	data, err := unix.ByteSliceFromString(name)
	utils.MustNo(err)

	offset := uint32(len(t.buf))
	t.buf = append(t.buf, data...)
	return offset
}

func (t *StringTable) Size() uint64 {
	return uint64(len(t.buf))
}

func (t *StringTable) Bytes() []byte {
	return t.buf
}
