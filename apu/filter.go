package apu

// filter is a fixed 6th-order IIR antialiasing filter tuned for an
// interior sample rate of 352.8 kHz (8 * 44.1 kHz), run once per
// mixed sample ahead of the 8x decimator in APU.emitSample. It is the
// low-pass stage only; DC blocking is done by the onePoleHighPass
// stages in apu.go. Substituting any filter with equal or better
// attenuation above 20 kHz is fine.
type filter struct {
	d0, d1, d2, d3, d4, d5 float32
}

func (f *filter) apply(input float32) float32 {
	v17 := 0.88915976376199868 * f.d5
	v14 := -1.8046931203033707 * f.d2
	v22 := 1.0862126905669063 * f.d4
	v21 := -2.0 * f.d1
	v16 := 0.97475300535003617 * f.d4
	v15 := 0.80752903209625071 * f.d3
	v23 := 0.022615049608677419 * input
	v12 := -1.7848029270188865 * f.d0

	v04 := -v12 + v23
	v07 := v04 - v15
	v18 := 0.04410421960695305 * v07
	v13 := -1.8500161310426058 * f.d1
	v05 := -v13 + v18
	v08 := v05 - v16
	v19 := 1.0876279697671658 * v08
	v10 := v19 + v21
	v11 := v10 + v22
	v06 := v11 - v14
	v09 := v06 - v17
	output := 1.3176796030365203 * v09

	f.d5, f.d4, f.d3, f.d2, f.d1, f.d0 = f.d2, f.d1, f.d0, v09, v08, v07

	return output
}
