// Package wasm encodes WebAssembly binary modules.
//
// It covers the sections the runtime emits itself: memories, imports of
// memories, exports and custom sections. Contexts use it to build the
// module that hosts their linear memory:
//
//	m := &wasm.Module{
//		Memories: []wasm.MemoryType{{Limits: wasm.Limits{Min: 1}}},
//		Exports:  []wasm.Export{{Name: "memory", Kind: wasm.KindMemory}},
//	}
//	bin := m.Encode()
//
// # LEB128 Encoding
//
//	wasm.EncodeLEB128u(624485) // e5 8e 26
//	n, err := wasm.ReadLEB128u(bytes.NewReader(b))
package wasm
