package wasmbin

// Section ids, in the order the binary format requires them.
const (
	SectionType   = 0x01
	SectionFunc   = 0x03
	SectionMemory = 0x05
	SectionGlobal = 0x06
	SectionExport = 0x07
	SectionCode   = 0x0a
)

// Export kinds.
const (
	ExportFunc   = 0x00
	ExportMemory = 0x02
)

// TypeI32 is the value type encoding for i32.
const TypeI32 = 0x7f

// Opcodes used by the emitted function bodies.
const (
	opIf        = 0x04
	opEnd       = 0x0b
	opReturn    = 0x0f
	opLocalGet  = 0x20
	opLocalSet  = 0x21
	opGlobalGet = 0x23
	opGlobalSet = 0x24
	opI32Const  = 0x41
	opI32GtU    = 0x4b
	opI32Add    = 0x6a
	opI32Sub    = 0x6b
	opI32And    = 0x71

	blockVoid = 0x40
)

// EncodeULEB128 encodes an unsigned value in LEB128 format.
func EncodeULEB128(v uint32) []byte {
	var result []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		result = append(result, b)
		if v == 0 {
			break
		}
	}
	return result
}

// EncodeSLEB128 encodes a signed value in LEB128 format.
func EncodeSLEB128[T int32 | int64](v T) []byte {
	var result []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			result = append(result, b)
			break
		}
		result = append(result, b|0x80)
	}
	return result
}

// Builder accumulates the sections of one module. Sections must be added
// in id order; Builder does not reorder them.
type Builder struct {
	out []byte
}

// NewBuilder starts a module with the magic and version header.
func NewBuilder() *Builder {
	return &Builder{
		out: []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00},
	}
}

// Section appends one section with its size-prefixed payload.
func (b *Builder) Section(id byte, payload []byte) {
	b.out = append(b.out, id)
	b.out = append(b.out, EncodeULEB128(uint32(len(payload)))...)
	b.out = append(b.out, payload...)
}

// Bytes returns the complete module binary.
func (b *Builder) Bytes() []byte { return b.out }

func appendExport(dst []byte, name string, kind byte, index uint32) []byte {
	dst = append(dst, EncodeULEB128(uint32(len(name)))...)
	dst = append(dst, name...)
	dst = append(dst, kind)
	dst = append(dst, EncodeULEB128(index)...)
	return dst
}
