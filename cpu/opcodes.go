package cpu

// Addressing modes. https://www.nesdev.org/obelisk-6502-guide/addressing.html
const (
	modeImplicit = iota
	modeAccumulator
	modeImmediate
	modeZeroPage
	modeZeroPageX
	modeZeroPageY
	modeRelative
	modeAbsolute
	modeAbsoluteX
	modeAbsoluteY
	modeIndirect
	modeIndirectX // (zp,X)
	modeIndirectY // (zp),Y
)

// Instruction mnemonics, official and the handful of unofficial
// opcodes real NES software relies on (LAX, SAX, AXS, DCP, ISC).
const (
	iADC = iota
	iAND
	iASL
	iBCC
	iBCS
	iBEQ
	iBIT
	iBMI
	iBNE
	iBPL
	iBRK
	iBVC
	iBVS
	iCLC
	iCLD
	iCLI
	iCLV
	iCMP
	iCPX
	iCPY
	iDEC
	iDEX
	iDEY
	iEOR
	iINC
	iINX
	iINY
	iJMP
	iJSR
	iLDA
	iLDX
	iLDY
	iLSR
	iNOP
	iORA
	iPHA
	iPHP
	iPLA
	iPLP
	iROL
	iROR
	iRTI
	iRTS
	iSBC
	iSEC
	iSED
	iSEI
	iSTA
	iSTX
	iSTY
	iTAX
	iTAY
	iTSX
	iTXA
	iTXS
	iTYA
	iLAX // undocumented: LDA+LDX combined
	iSAX // undocumented: store (A & X)
	iDCP // undocumented: DEC then CMP
	iISC // undocumented: INC then SBC
	iAXS // undocumented: X = (A & X) - imm, CMP-style flags
)

type opcode struct {
	inst uint8
	name string
	mode uint8
}

// opcodes maps each of the 256 possible opcode bytes to its decoded
// instruction and addressing mode. Bytes absent from this table are
// rejected by the CPU as invalid.
var opcodes = map[uint8]opcode{
	0x69: {iADC, "ADC", modeImmediate},
	0x65: {iADC, "ADC", modeZeroPage},
	0x75: {iADC, "ADC", modeZeroPageX},
	0x6D: {iADC, "ADC", modeAbsolute},
	0x7D: {iADC, "ADC", modeAbsoluteX},
	0x79: {iADC, "ADC", modeAbsoluteY},
	0x61: {iADC, "ADC", modeIndirectX},
	0x71: {iADC, "ADC", modeIndirectY},

	0x29: {iAND, "AND", modeImmediate},
	0x25: {iAND, "AND", modeZeroPage},
	0x35: {iAND, "AND", modeZeroPageX},
	0x2D: {iAND, "AND", modeAbsolute},
	0x3D: {iAND, "AND", modeAbsoluteX},
	0x39: {iAND, "AND", modeAbsoluteY},
	0x21: {iAND, "AND", modeIndirectX},
	0x31: {iAND, "AND", modeIndirectY},

	0x0A: {iASL, "ASL", modeAccumulator},
	0x06: {iASL, "ASL", modeZeroPage},
	0x16: {iASL, "ASL", modeZeroPageX},
	0x0E: {iASL, "ASL", modeAbsolute},
	0x1E: {iASL, "ASL", modeAbsoluteX},

	0x90: {iBCC, "BCC", modeRelative},
	0xB0: {iBCS, "BCS", modeRelative},
	0xF0: {iBEQ, "BEQ", modeRelative},
	0x30: {iBMI, "BMI", modeRelative},
	0xD0: {iBNE, "BNE", modeRelative},
	0x10: {iBPL, "BPL", modeRelative},
	0x50: {iBVC, "BVC", modeRelative},
	0x70: {iBVS, "BVS", modeRelative},

	0x24: {iBIT, "BIT", modeZeroPage},
	0x2C: {iBIT, "BIT", modeAbsolute},

	0x00: {iBRK, "BRK", modeImplicit},

	0x18: {iCLC, "CLC", modeImplicit},
	0xD8: {iCLD, "CLD", modeImplicit},
	0x58: {iCLI, "CLI", modeImplicit},
	0xB8: {iCLV, "CLV", modeImplicit},

	0xC9: {iCMP, "CMP", modeImmediate},
	0xC5: {iCMP, "CMP", modeZeroPage},
	0xD5: {iCMP, "CMP", modeZeroPageX},
	0xCD: {iCMP, "CMP", modeAbsolute},
	0xDD: {iCMP, "CMP", modeAbsoluteX},
	0xD9: {iCMP, "CMP", modeAbsoluteY},
	0xC1: {iCMP, "CMP", modeIndirectX},
	0xD1: {iCMP, "CMP", modeIndirectY},

	0xE0: {iCPX, "CPX", modeImmediate},
	0xE4: {iCPX, "CPX", modeZeroPage},
	0xEC: {iCPX, "CPX", modeAbsolute},

	0xC0: {iCPY, "CPY", modeImmediate},
	0xC4: {iCPY, "CPY", modeZeroPage},
	0xCC: {iCPY, "CPY", modeAbsolute},

	0xC6: {iDEC, "DEC", modeZeroPage},
	0xD6: {iDEC, "DEC", modeZeroPageX},
	0xCE: {iDEC, "DEC", modeAbsolute},
	0xDE: {iDEC, "DEC", modeAbsoluteX},

	0xCA: {iDEX, "DEX", modeImplicit},
	0x88: {iDEY, "DEY", modeImplicit},

	0x49: {iEOR, "EOR", modeImmediate},
	0x45: {iEOR, "EOR", modeZeroPage},
	0x55: {iEOR, "EOR", modeZeroPageX},
	0x4D: {iEOR, "EOR", modeAbsolute},
	0x5D: {iEOR, "EOR", modeAbsoluteX},
	0x59: {iEOR, "EOR", modeAbsoluteY},
	0x41: {iEOR, "EOR", modeIndirectX},
	0x51: {iEOR, "EOR", modeIndirectY},

	0xE6: {iINC, "INC", modeZeroPage},
	0xF6: {iINC, "INC", modeZeroPageX},
	0xEE: {iINC, "INC", modeAbsolute},
	0xFE: {iINC, "INC", modeAbsoluteX},

	0xE8: {iINX, "INX", modeImplicit},
	0xC8: {iINY, "INY", modeImplicit},

	0x4C: {iJMP, "JMP", modeAbsolute},
	0x6C: {iJMP, "JMP", modeIndirect},
	0x20: {iJSR, "JSR", modeAbsolute},

	0xA9: {iLDA, "LDA", modeImmediate},
	0xA5: {iLDA, "LDA", modeZeroPage},
	0xB5: {iLDA, "LDA", modeZeroPageX},
	0xAD: {iLDA, "LDA", modeAbsolute},
	0xBD: {iLDA, "LDA", modeAbsoluteX},
	0xB9: {iLDA, "LDA", modeAbsoluteY},
	0xA1: {iLDA, "LDA", modeIndirectX},
	0xB1: {iLDA, "LDA", modeIndirectY},

	0xA2: {iLDX, "LDX", modeImmediate},
	0xA6: {iLDX, "LDX", modeZeroPage},
	0xB6: {iLDX, "LDX", modeZeroPageY},
	0xAE: {iLDX, "LDX", modeAbsolute},
	0xBE: {iLDX, "LDX", modeAbsoluteY},

	0xA0: {iLDY, "LDY", modeImmediate},
	0xA4: {iLDY, "LDY", modeZeroPage},
	0xB4: {iLDY, "LDY", modeZeroPageX},
	0xAC: {iLDY, "LDY", modeAbsolute},
	0xBC: {iLDY, "LDY", modeAbsoluteX},

	0x4A: {iLSR, "LSR", modeAccumulator},
	0x46: {iLSR, "LSR", modeZeroPage},
	0x56: {iLSR, "LSR", modeZeroPageX},
	0x4E: {iLSR, "LSR", modeAbsolute},
	0x5E: {iLSR, "LSR", modeAbsoluteX},

	0xEA: {iNOP, "NOP", modeImplicit},
	0x1A: {iNOP, "NOP", modeImplicit},
	0x3A: {iNOP, "NOP", modeImplicit},
	0x5A: {iNOP, "NOP", modeImplicit},
	0xDA: {iNOP, "NOP", modeImplicit},
	0xFA: {iNOP, "NOP", modeImplicit},
	0x80: {iNOP, "NOP", modeImmediate},
	0x04: {iNOP, "NOP", modeZeroPage},
	0x44: {iNOP, "NOP", modeZeroPage},
	0x64: {iNOP, "NOP", modeZeroPage},
	0x14: {iNOP, "NOP", modeZeroPageX},
	0x34: {iNOP, "NOP", modeZeroPageX},
	0x54: {iNOP, "NOP", modeZeroPageX},
	0x74: {iNOP, "NOP", modeZeroPageX},
	0xD4: {iNOP, "NOP", modeZeroPageX},
	0xF4: {iNOP, "NOP", modeZeroPageX},
	0x0C: {iNOP, "NOP", modeAbsolute},
	0x1C: {iNOP, "NOP", modeAbsoluteX},
	0x3C: {iNOP, "NOP", modeAbsoluteX},
	0x5C: {iNOP, "NOP", modeAbsoluteX},
	0x7C: {iNOP, "NOP", modeAbsoluteX},
	0xDC: {iNOP, "NOP", modeAbsoluteX},
	0xFC: {iNOP, "NOP", modeAbsoluteX},

	0x09: {iORA, "ORA", modeImmediate},
	0x05: {iORA, "ORA", modeZeroPage},
	0x15: {iORA, "ORA", modeZeroPageX},
	0x0D: {iORA, "ORA", modeAbsolute},
	0x1D: {iORA, "ORA", modeAbsoluteX},
	0x19: {iORA, "ORA", modeAbsoluteY},
	0x01: {iORA, "ORA", modeIndirectX},
	0x11: {iORA, "ORA", modeIndirectY},

	0x48: {iPHA, "PHA", modeImplicit},
	0x08: {iPHP, "PHP", modeImplicit},
	0x68: {iPLA, "PLA", modeImplicit},
	0x28: {iPLP, "PLP", modeImplicit},

	0x2A: {iROL, "ROL", modeAccumulator},
	0x26: {iROL, "ROL", modeZeroPage},
	0x36: {iROL, "ROL", modeZeroPageX},
	0x2E: {iROL, "ROL", modeAbsolute},
	0x3E: {iROL, "ROL", modeAbsoluteX},

	0x6A: {iROR, "ROR", modeAccumulator},
	0x66: {iROR, "ROR", modeZeroPage},
	0x76: {iROR, "ROR", modeZeroPageX},
	0x6E: {iROR, "ROR", modeAbsolute},
	0x7E: {iROR, "ROR", modeAbsoluteX},

	0x40: {iRTI, "RTI", modeImplicit},
	0x60: {iRTS, "RTS", modeImplicit},

	0xE9: {iSBC, "SBC", modeImmediate},
	0xEB: {iSBC, "SBC", modeImmediate},
	0xE5: {iSBC, "SBC", modeZeroPage},
	0xF5: {iSBC, "SBC", modeZeroPageX},
	0xED: {iSBC, "SBC", modeAbsolute},
	0xFD: {iSBC, "SBC", modeAbsoluteX},
	0xF9: {iSBC, "SBC", modeAbsoluteY},
	0xE1: {iSBC, "SBC", modeIndirectX},
	0xF1: {iSBC, "SBC", modeIndirectY},

	0x38: {iSEC, "SEC", modeImplicit},
	0xF8: {iSED, "SED", modeImplicit},
	0x78: {iSEI, "SEI", modeImplicit},

	0x85: {iSTA, "STA", modeZeroPage},
	0x95: {iSTA, "STA", modeZeroPageX},
	0x8D: {iSTA, "STA", modeAbsolute},
	0x9D: {iSTA, "STA", modeAbsoluteX},
	0x99: {iSTA, "STA", modeAbsoluteY},
	0x81: {iSTA, "STA", modeIndirectX},
	0x91: {iSTA, "STA", modeIndirectY},

	0x86: {iSTX, "STX", modeZeroPage},
	0x96: {iSTX, "STX", modeZeroPageY},
	0x8E: {iSTX, "STX", modeAbsolute},

	0x84: {iSTY, "STY", modeZeroPage},
	0x94: {iSTY, "STY", modeZeroPageX},
	0x8C: {iSTY, "STY", modeAbsolute},

	0xAA: {iTAX, "TAX", modeImplicit},
	0xA8: {iTAY, "TAY", modeImplicit},
	0xBA: {iTSX, "TSX", modeImplicit},
	0x8A: {iTXA, "TXA", modeImplicit},
	0x9A: {iTXS, "TXS", modeImplicit},
	0x98: {iTYA, "TYA", modeImplicit},

	0xA7: {iLAX, "LAX", modeZeroPage},
	0xB7: {iLAX, "LAX", modeZeroPageY},
	0xAF: {iLAX, "LAX", modeAbsolute},
	0xBF: {iLAX, "LAX", modeAbsoluteY},
	0xA3: {iLAX, "LAX", modeIndirectX},
	0xB3: {iLAX, "LAX", modeIndirectY},

	0x87: {iSAX, "SAX", modeZeroPage},
	0x97: {iSAX, "SAX", modeZeroPageY},
	0x8F: {iSAX, "SAX", modeAbsolute},
	0x83: {iSAX, "SAX", modeIndirectX},

	0xC7: {iDCP, "DCP", modeZeroPage},
	0xD7: {iDCP, "DCP", modeZeroPageX},
	0xCF: {iDCP, "DCP", modeAbsolute},
	0xDF: {iDCP, "DCP", modeAbsoluteX},
	0xDB: {iDCP, "DCP", modeAbsoluteY},
	0xC3: {iDCP, "DCP", modeIndirectX},
	0xD3: {iDCP, "DCP", modeIndirectY},

	0xE7: {iISC, "ISC", modeZeroPage},
	0xF7: {iISC, "ISC", modeZeroPageX},
	0xEF: {iISC, "ISC", modeAbsolute},
	0xFF: {iISC, "ISC", modeAbsoluteX},
	0xFB: {iISC, "ISC", modeAbsoluteY},
	0xE3: {iISC, "ISC", modeIndirectX},
	0xF3: {iISC, "ISC", modeIndirectY},

	0xCB: {iAXS, "AXS", modeImmediate},
}
