// Package analysis inspects recorded runs.
//
//   - [Spectrum] and [DominantFrequency]: power spectrum of a sampled signal,
//     e.g. the velocity oscillation of a badly tuned cruise controller
//   - [StepResponse]: rise time, overshoot and settling of a signal that
//     approaches a target
//   - [NewPortrait]: two columns plotted against each other, e.g. v against a
//
// Typical use after loading a stored run:
//
//	v, _ := table.Column("v")
//	freq, _ := analysis.DominantFrequency(v, meta.Dt)
package analysis
