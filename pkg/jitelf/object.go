package jitelf

import "jitelf/pkg/utils"

// Section indexes. The section set is closed: every object has exactly
// these five, in this order.
const (
	SectionNull = iota
	SectionText
	SectionDynsym
	SectionDynstr
	SectionShstrtab
	SectionCount
)

// Segment indexes.
const (
	SegmentText = iota
	SegmentReadonly
	SegmentCount
)

// HeaderStop is the file offset just past the fixed header region: file
// header, section-header table, segment-header table.
const HeaderStop = ELFHeaderSize + SectionCount*SectionHeaderSize + SegmentCount*ProgramHeaderSize

// Object is the per-invocation layout workspace. It is populated in one
// forward pass and serialized once.
type Object struct {
	FileHeader     Header64
	SectionHeaders [SectionCount]SectionHeader
	SegmentHeaders [SegmentCount]ProgramHeader

	Dynsym   SymbolTable
	Dynstr   StringTable
	Shstrtab StringTable

	// File-offset cursor. Only the layout steps move it, and only forward.
	sectionOffset uint64
}

func NewObject() *Object {
	return &Object{
		Dynsym:   NewSymbolTable(),
		Dynstr:   NewStringTable(),
		Shstrtab: NewStringTable(),
	}
}

func (o *Object) Shdr(idx int) *SectionHeader {
	utils.Assert(idx < SectionCount)
	return &o.SectionHeaders[idx]
}

func (o *Object) Phdr(idx int) *ProgramHeader {
	utils.Assert(idx < SegmentCount)
	return &o.SegmentHeaders[idx]
}

// alignOffset rounds the cursor up to the next page boundary and returns
// the padding length.
func (o *Object) alignOffset() uint64 {
	newOffset := utils.AlignTo(o.sectionOffset, PageSize)
	delta := newOffset - o.sectionOffset
	o.sectionOffset = newOffset
	return delta
}
