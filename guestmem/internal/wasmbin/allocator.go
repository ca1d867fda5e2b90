package wasmbin

// PageSize is the WebAssembly linear memory page size in bytes.
const PageSize = 65536

// AllocBase is the first offset the builtin allocator hands out. Offset 0
// is never returned, leaving it free as the exhaustion sentinel.
const AllocBase = 8

// Allocator emits a self-contained module that exports a bump allocator
// over a fixed linear memory:
//
//	(memory (export "memory") pages pages)
//	(func (export "alloc") (param i32) (result i32))
//	(func (export "free") (param i32 i32))
//
// alloc rounds the cursor up to an 8-byte boundary, returns the aligned
// offset and advances the cursor, or returns 0 once the request no longer
// fits. free is a no-op; memory comes back only by dropping the instance.
//
// pages must stay below 32768 so the byte limit fits a signed i32.
func Allocator(pages uint32) []byte {
	b := NewBuilder()

	// Two signatures: alloc is (i32) -> (i32), free is (i32, i32) -> ().
	var types []byte
	types = append(types, EncodeULEB128(2)...)
	types = append(types, 0x60, 0x01, TypeI32, 0x01, TypeI32)
	types = append(types, 0x60, 0x02, TypeI32, TypeI32, 0x00)
	b.Section(SectionType, types)

	// alloc uses type 0, free uses type 1.
	b.Section(SectionFunc, []byte{0x02, 0x00, 0x01})

	// One memory, min == max so the backing buffer never moves.
	var mem []byte
	mem = append(mem, 0x01, 0x01)
	mem = append(mem, EncodeULEB128(pages)...)
	mem = append(mem, EncodeULEB128(pages)...)
	b.Section(SectionMemory, mem)

	// Global 0 is the mutable bump cursor.
	var global []byte
	global = append(global, 0x01, TypeI32, 0x01)
	global = append(global, opI32Const)
	global = append(global, EncodeSLEB128(int32(AllocBase))...)
	global = append(global, opEnd)
	b.Section(SectionGlobal, global)

	var exports []byte
	exports = append(exports, EncodeULEB128(3)...)
	exports = appendExport(exports, "memory", ExportMemory, 0)
	exports = appendExport(exports, "alloc", ExportFunc, 0)
	exports = appendExport(exports, "free", ExportFunc, 1)
	b.Section(SectionExport, exports)

	alloc := allocBody(int32(pages * PageSize))
	free := []byte{0x00, opEnd}
	var code []byte
	code = append(code, EncodeULEB128(2)...)
	code = append(code, EncodeULEB128(uint32(len(alloc)))...)
	code = append(code, alloc...)
	code = append(code, EncodeULEB128(uint32(len(free)))...)
	code = append(code, free...)
	b.Section(SectionCode, code)

	return b.Bytes()
}

// allocBody assembles the alloc export. Local 0 is the size parameter,
// local 1 holds the aligned cursor.
func allocBody(limit int32) []byte {
	var body []byte
	body = append(body, 0x01, 0x01, TypeI32)

	// local 1 = (cursor + 7) & -8
	body = append(body, opGlobalGet, 0x00)
	body = append(body, opI32Const)
	body = append(body, EncodeSLEB128(int32(7))...)
	body = append(body, opI32Add)
	body = append(body, opI32Const)
	body = append(body, EncodeSLEB128(int32(-8))...)
	body = append(body, opI32And)
	body = append(body, opLocalSet, 0x01)

	// if size > limit - local 1, return the sentinel. The subtraction
	// never underflows: the cursor starts at AllocBase and only ever
	// advances to offsets this check has admitted.
	body = append(body, opLocalGet, 0x00)
	body = append(body, opI32Const)
	body = append(body, EncodeSLEB128(limit)...)
	body = append(body, opLocalGet, 0x01)
	body = append(body, opI32Sub)
	body = append(body, opI32GtU)
	body = append(body, opIf, blockVoid)
	body = append(body, opI32Const)
	body = append(body, EncodeSLEB128(int32(0))...)
	body = append(body, opReturn)
	body = append(body, opEnd)

	// cursor = local 1 + size, then return local 1.
	body = append(body, opLocalGet, 0x01)
	body = append(body, opLocalGet, 0x00)
	body = append(body, opI32Add)
	body = append(body, opGlobalSet, 0x00)
	body = append(body, opLocalGet, 0x01)
	body = append(body, opEnd)

	return body
}
