package fvm

// Physics holds the nonlinear constitutive callbacks of a system. Any slot
// may be nil, which is treated as an all zero contribution for that term.
// Every callback receives a species length residual buffer f, already
// zeroed, and must not retain f or the state slices beyond the call.
type Physics struct {
	// Flux fills f with the edge flux between two control volumes with
	// unknowns uk and ul at the edge endpoints.
	Flux func(f, uk, ul []float64)
	// Reaction fills f with the reaction rate at a node with unknowns u.
	Reaction func(f, u []float64)
	// Source fills f with the (state independent) volumetric source.
	Source func(f []float64)
	// Storage fills f with the accumulated quantity whose backward
	// difference forms the transient term.
	Storage func(f, u []float64)
}

func zero(f []float64) {
	for i := range f {
		f[i] = 0
	}
}

// EvalFlux zeroes f and applies the flux callback if present.
func (p Physics) EvalFlux(f, uk, ul []float64) {
	zero(f)
	if p.Flux != nil {
		p.Flux(f, uk, ul)
	}
}

func (p Physics) EvalReaction(f, u []float64) {
	zero(f)
	if p.Reaction != nil {
		p.Reaction(f, u)
	}
}

func (p Physics) EvalSource(f []float64) {
	zero(f)
	if p.Source != nil {
		p.Source(f)
	}
}

func (p Physics) EvalStorage(f, u []float64) {
	zero(f)
	if p.Storage != nil {
		p.Storage(f, u)
	}
}
