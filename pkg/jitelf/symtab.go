package jitelf

import (
	"bytes"
	"encoding/binary"

	"jitelf/pkg/utils"
)

// SymbolTable is an append-only sequence of Sym64 records. Index 0 is the
// reserved all-zero null symbol.
type SymbolTable struct {
	syms []Sym64
}

func NewSymbolTable() SymbolTable {
	return SymbolTable{syms: make([]Sym64, 1)}
}

// Insert appends sym. Callers insert in ascending address order.
func (t *SymbolTable) Insert(sym Sym64) {
	t.syms = append(t.syms, sym)
}

func (t *SymbolTable) Count() int {
	return len(t.syms)
}

func (t *SymbolTable) Size() uint64 {
	return uint64(len(t.syms)) * uint64(SymbolSize)
}

func (t *SymbolTable) Bytes() []byte {
	buf := &bytes.Buffer{}
	err := binary.Write(buf, binary.LittleEndian, t.syms)
	utils.MustNo(err)
	return buf.Bytes()
}
