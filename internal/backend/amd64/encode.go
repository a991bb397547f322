package amd64

import "encoding/binary"

// xmm is an SSE register number. Only xmm0 and xmm1 are used.
type xmm uint8

const (
	xmm0 xmm = 0
	xmm1 xmm = 1
)

// Scalar single-precision opcodes (F3 0F xx).
const (
	opAddss byte = 0x58
	opMulss byte = 0x59
	opSubss byte = 0x5C
	opDivss byte = 0x5E
)

// asm accumulates machine code for one function.
type asm struct {
	buf []byte
}

func (a *asm) emit(b ...byte) { a.buf = append(a.buf, b...) }

func (a *asm) imm32(v uint32) { a.buf = binary.LittleEndian.AppendUint32(a.buf, v) }

// prologue: push rbp; mov rbp, rsp; sub rsp, frame
func (a *asm) prologue(frame uint32) {
	a.emit(0x55)
	a.emit(0x48, 0x89, 0xE5)
	if frame > 0 {
		a.emit(0x48, 0x81, 0xEC)
		a.imm32(frame)
	}
}

// epilogue: leave; ret
func (a *asm) epilogue() {
	a.emit(0xC9, 0xC3)
}

// movImm: mov eax, bits; movd r, eax
func (a *asm) movImm(r xmm, bits uint32) {
	a.emit(0xB8)
	a.imm32(bits)
	a.emit(0x66, 0x0F, 0x6E, 0xC0|byte(r)<<3)
}

// loadSlot: movss r, dword [rbp+disp32]
func (a *asm) loadSlot(r xmm, disp int32) {
	a.emit(0xF3, 0x0F, 0x10, 0x85|byte(r)<<3)
	a.imm32(uint32(disp))
}

// storeSlot: movss dword [rbp+disp32], r
func (a *asm) storeSlot(disp int32, r xmm) {
	a.emit(0xF3, 0x0F, 0x11, 0x85|byte(r)<<3)
	a.imm32(uint32(disp))
}

// sse: <op>ss dst, src
func (a *asm) sse(op byte, dst, src xmm) {
	a.emit(0xF3, 0x0F, op, 0xC0|byte(dst)<<3|byte(src))
}

// padTo fills with int3 up to the next multiple of align.
func padTo(code []byte, align int) []byte {
	for len(code)%align != 0 {
		code = append(code, 0xCC)
	}
	return code
}
