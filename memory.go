package hostinterop

// Memory is a flat byte-addressed region a direct buffer can sit on.
// Offsets are absolute within the region.
type Memory interface {
	Read(offset uint32, length uint32) ([]byte, error)
	Write(offset uint32, data []byte) error
	ReadU8(offset uint32) (uint8, error)
	WriteU8(offset uint32, value uint8) error
	Size() uint32
}
