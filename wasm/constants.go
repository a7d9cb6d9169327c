package wasm

// WebAssembly binary format magic number and version.
const (
	// Magic is "\0asm" read as a little-endian u32.
	Magic uint32 = 0x6D736100

	// Version is the supported binary format version.
	Version uint32 = 0x01
)

// Section IDs. Sections are written in increasing order by ID, custom
// sections last.
const (
	SectionCustom byte = 0
	SectionImport byte = 2
	SectionMemory byte = 5
	SectionExport byte = 7
)

// Import/export descriptor kinds.
const (
	KindFunc   byte = 0
	KindTable  byte = 1
	KindMemory byte = 2
	KindGlobal byte = 3
	KindTag    byte = 4
)

// Limits flags
const (
	LimitsNoMax    byte = 0x00
	LimitsHasMax   byte = 0x01
	LimitsShared   byte = 0x02
	LimitsMemory64 byte = 0x04
)

// Memory page limits
const (
	PageSize         uint32 = 65536
	MemoryMaxPages32 uint64 = 65536           // 4GiB of 32-bit memory
	MemoryMaxPages64 uint64 = 281474976710656 // 2^48 pages
)
