package spectrum_test

import (
	"fmt"

	"github.com/arpes-go/kspace/spectrum"
)

// ExampleSpectrum_Bin demonstrates 2x2 block binning of a small dispersion.
func ExampleSpectrum_Bin() {
	eV := []float64{16.0, 16.1, 16.2, 16.3}
	th := []float64{-1, 0, 1, 2}
	data := make([]float64, len(eV)*len(th))
	for i := range data {
		data[i] = float64(i)
	}

	s, _ := spectrum.New(data,
		[]spectrum.Axis{
			{Name: spectrum.AxisEV, Values: eV},
			{Name: spectrum.AxisThetaPar, Values: th},
		},
		spectrum.NewAttrs())

	binned, _ := s.Bin(spectrum.BinSpec{spectrum.AxisEV: 2, spectrum.AxisThetaPar: 2}, spectrum.PadBoundary)

	fmt.Println(binned.Dims())
	fmt.Println(binned.History()[0])
	// Output:
	// [2 2]
	// Data binning applied: {eV: 2, theta_par: 2}
}
