package vm

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	hostinterop "github.com/wippyai/hostinterop"
	"github.com/wippyai/hostinterop/errors"
	"github.com/wippyai/hostinterop/wasm"
)

// PageSize is the size of one linear memory page
const PageSize = wasm.PageSize

// LinearMemory is a wazero linear memory that direct buffers can view.
// It owns the wazero runtime that hosts it.
type LinearMemory struct {
	rt  wazero.Runtime
	mem api.Memory
}

var _ hostinterop.Memory = (*LinearMemory)(nil)

// memoryModule builds a module exporting one memory of the given page count
func memoryModule(pages uint32) []byte {
	m := &wasm.Module{
		Memories: []wasm.MemoryType{{Limits: wasm.Limits{Min: uint64(pages)}}},
		Exports:  []wasm.Export{{Name: "memory", Kind: wasm.KindMemory}},
	}
	return m.Encode()
}

// NewLinearMemory instantiates a linear memory of pages pages
func NewLinearMemory(ctx context.Context, pages uint32) (*LinearMemory, error) {
	rt := wazero.NewRuntime(ctx)
	mod, err := rt.Instantiate(ctx, memoryModule(pages))
	if err != nil {
		_ = rt.Close(ctx)
		return nil, errors.Wrap(errors.PhaseAdapter, errors.KindInvalidInput, err, "instantiate linear memory")
	}
	mem := mod.ExportedMemory("memory")
	if mem == nil {
		_ = rt.Close(ctx)
		return nil, errors.NotFound(errors.PhaseAdapter, "export", "memory")
	}
	Logger().Debug("linear memory created", zap.Uint32("pages", pages))
	return &LinearMemory{rt: rt, mem: mem}, nil
}

// Memory returns the underlying wazero memory
func (l *LinearMemory) Memory() api.Memory { return l.mem }

func (l *LinearMemory) Size() uint32 { return l.mem.Size() }

func (l *LinearMemory) Read(offset uint32, length uint32) ([]byte, error) {
	data, ok := l.mem.Read(offset, length)
	if !ok {
		return nil, errors.InvalidBufferOffset(errors.PhaseAdapter, int64(offset), int64(length))
	}
	return data, nil
}

func (l *LinearMemory) Write(offset uint32, data []byte) error {
	if !l.mem.Write(offset, data) {
		return errors.InvalidBufferOffset(errors.PhaseAdapter, int64(offset), int64(len(data)))
	}
	return nil
}

func (l *LinearMemory) ReadU8(offset uint32) (uint8, error) {
	v, ok := l.mem.ReadByte(offset)
	if !ok {
		return 0, errors.InvalidBufferOffset(errors.PhaseAdapter, int64(offset), 1)
	}
	return v, nil
}

func (l *LinearMemory) WriteU8(offset uint32, value uint8) error {
	if !l.mem.WriteByte(offset, value) {
		return errors.InvalidBufferOffset(errors.PhaseAdapter, int64(offset), 1)
	}
	return nil
}

// Close releases the wazero runtime
func (l *LinearMemory) Close(ctx context.Context) error {
	return l.rt.Close(ctx)
}
