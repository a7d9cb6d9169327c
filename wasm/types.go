package wasm

// Module is the subset of a WebAssembly module the encoder writes
type Module struct {
	Imports        []Import
	Memories       []MemoryType
	Exports        []Export
	CustomSections []CustomSection
}

// Import is an imported memory. Other import kinds are not encoded.
type Import struct {
	Module string
	Name   string
	Memory MemoryType
}

// MemoryType describes a linear memory with size limits.
type MemoryType struct {
	Limits Limits
}

// Limits describes size constraints for memories.
type Limits struct {
	Max      *uint64
	Min      uint64
	Shared   bool
	Memory64 bool
}

// Export describes an exported item.
// Kind uses KindFunc, KindTable, KindMemory, KindGlobal, or KindTag.
type Export struct {
	Name string
	Kind byte
	Idx  uint32
}

// CustomSection holds a named custom section's data.
type CustomSection struct {
	Name string
	Data []byte
}

// NumMemories returns imported plus defined memories
func (m *Module) NumMemories() int {
	return len(m.Imports) + len(m.Memories)
}
