package model

import "github.com/san-kum/hybridsim/internal/hybrid"

// SpeciesModes resolves user modes: Dynamic species start out Discrete.
func SpeciesModes(net *Network) []hybrid.Mode {
	modes := make([]hybrid.Mode, len(net.Species))
	for i, s := range net.Species {
		if s.Mode == hybrid.Dynamic {
			modes[i] = hybrid.Discrete
		} else {
			modes[i] = s.Mode
		}
	}
	return modes
}

// ReactionModes marks a reaction Continuous only when every species it
// touches is Continuous. A reaction with no species at all is Continuous.
func ReactionModes(net *Network, speciesModes []hybrid.Mode) []hybrid.Mode {
	modes := make([]hybrid.Mode, len(net.Reactions))
	for j := range net.Reactions {
		r := &net.Reactions[j]
		modes[j] = hybrid.Continuous
		for i, m := range speciesModes {
			if m != hybrid.Continuous && r.involves(i) {
				modes[j] = hybrid.Discrete
				break
			}
		}
	}
	return modes
}
