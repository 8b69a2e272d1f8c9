package kconv

import (
	"fmt"

	"github.com/arpes-go/kspace/geometry"
	"github.com/arpes-go/kspace/spectrum"
)

// ConvertBatch runs Convert over a list of spectra with shared convention
// and options, collecting the warnings of every item into one slice. The
// first failing item aborts the batch; its position is recorded on the
// returned error.
func ConvertBatch(specs []*spectrum.Spectrum, conv geometry.Convention, opts Options) ([]*spectrum.Spectrum, []spectrum.Warning, error) {
	out := make([]*spectrum.Spectrum, 0, len(specs))
	var warns []spectrum.Warning

	for i, s := range specs {
		res, w, err := Convert(s, conv, opts)
		warns = append(warns, w...)
		if err != nil {
			return nil, warns, fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, res)
	}

	return out, warns, nil
}
