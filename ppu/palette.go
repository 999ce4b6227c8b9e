package ppu

// baseRGB is the 64-entry 2C02 master palette, packed as 0xRRGGBB.
var baseRGB = [64]uint32{
	0x808080, 0x003DA6, 0x0012B0, 0x440096, 0xA1005E,
	0xC70028, 0xBA0600, 0x8C1700, 0x5C2F00, 0x104500,
	0x054A00, 0x00472E, 0x004166, 0x000000, 0x050505, 0x050505,
	0xC7C7C7, 0x0077FF, 0x2155FF, 0x8237FA, 0xEB2FB5,
	0xFF2950, 0xFF2200, 0xD63200, 0xC46200, 0x358000,
	0x058F00, 0x008A55, 0x0099CC, 0x212121, 0x090909, 0x090909,
	0xFFFFFF, 0x0FD7FF, 0x69A2FF, 0xD480FF, 0xFF45F3,
	0xFF618B, 0xFF8833, 0xFF9C12, 0xFABC20, 0x9FE30E,
	0x2BF035, 0x0CF0A4, 0x05FBFF, 0x5E5E5E, 0x0D0D0D, 0x0D0D0D,
	0xFFFFFF, 0xA6FCFF, 0xB3ECFF, 0xDAABEB, 0xFFA8F9,
	0xFFABB3, 0xFFD2B0, 0xFFEFA6, 0xFFF79C, 0xD7E895,
	0xA6EDAF, 0xA2F2DA, 0x99FFFC, 0xDDDDDD, 0x111111, 0x111111,
}

// palette512 is the base 64 colors crossed with the 8 combinations of
// PPUMASK's color-emphasis bits (bits 5-7, BGR order). Real hardware
// attenuates the non-emphasized channels on composite output; this
// models that as a straight 25% cut, the common approximation used
// by software NES renderers rather than a full NTSC decode.
var palette512 [512]uint32

func init() {
	for emph := 0; emph < 8; emph++ {
		attenR := emph&0x1 == 0 // bit0: emphasize red -> don't attenuate red
		attenG := emph&0x2 == 0
		attenB := emph&0x4 == 0
		for i, c := range baseRGB {
			r := uint32(c>>16) & 0xFF
			g := uint32(c>>8) & 0xFF
			b := uint32(c) & 0xFF
			if attenR && (emph&0x6 != 0) {
				r = r * 3 / 4
			}
			if attenG && (emph&0x5 != 0) {
				g = g * 3 / 4
			}
			if attenB && (emph&0x3 != 0) {
				b = b * 3 / 4
			}
			palette512[emph*64+i] = r<<16 | g<<8 | b
		}
	}
}

// Palette returns the full 512-entry emphasis-crossed color table,
// indexed by (emphasisBits<<6 | paletteIndex) where emphasisBits is
// PPUMASK bits 5-7 shifted down to bits 0-2.
func Palette() [512]uint32 { return palette512 }
