package kconv_test

import (
	"fmt"

	"github.com/arpes-go/kspace/fermi"
	"github.com/arpes-go/kspace/geometry"
	"github.com/arpes-go/kspace/kconv"
	"github.com/arpes-go/kspace/spectrum"
)

// ExampleConvert converts a small dispersion measured at normal emission
// onto a momentum and binding-energy grid.
func ExampleConvert() {
	ev := make([]float64, 101)
	for i := range ev {
		ev[i] = 16.0 + 0.01*float64(i)
	}
	th := make([]float64, 11)
	for i := range th {
		th[i] = -10 + 2*float64(i)
	}
	data := make([]float64, len(ev)*len(th))
	for i := range data {
		data[i] = 1
	}

	attrs := spectrum.NewAttrs()
	attrs.Hv = 21.2
	attrs.Polar, attrs.Tilt, attrs.Azi = 0, 0, 0
	attrs.NormPolar, attrs.NormTilt, attrs.NormAzi = 0, 0, 0
	s, _ := spectrum.New(data, []spectrum.Axis{
		{Name: spectrum.AxisEV, Values: ev},
		{Name: spectrum.AxisThetaPar, Values: th},
	}, attrs)

	opts := kconv.DefaultOptions()
	opts.Reference = fermi.Constant(16.9)

	out, _, err := kconv.Convert(s, geometry.DefaultConvention(), opts)
	if err != nil {
		fmt.Println(err)
		return
	}

	for _, ax := range out.Axes() {
		fmt.Printf("%s: %d samples\n", ax.Name, ax.Len())
	}
	fmt.Println("energy scale:", out.Attrs().EVType)
	// Output:
	// eV: 101 samples
	// k_par: 11 samples
	// energy scale: binding
}
