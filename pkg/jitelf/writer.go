package jitelf

import (
	"encoding/binary"
	"io"

	"jitelf/pkg/utils"
)

// Writer emits the object sequentially. A sink error is fatal; there is no
// partial-success state.
type Writer struct {
	w io.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (w *Writer) Write(data any) {
	err := binary.Write(w.w, binary.LittleEndian, data)
	utils.MustNo(err)
}

func (w *Writer) WriteBytes(data []byte) {
	_, err := w.w.Write(data)
	utils.MustNo(err)
}

func (w *Writer) Pad(size uint64) {
	if size == 0 {
		return
	}
	w.WriteBytes(make([]byte, size))
}
