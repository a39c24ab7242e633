package sir

import "epigrid/internal/core"

// Parameters returns the session's parameters grouped for the HUD.
func (s *Session) Parameters() core.ParameterSnapshot {
	return s.params.Snapshot(s.seed, s.opts.label)
}

// Snapshot groups p for presentation. recoveryLabel is the display name of
// Alpha.
func (p Params) Snapshot(seed, recoveryLabel string) core.ParameterSnapshot {
	if recoveryLabel == "" {
		recoveryLabel = "alpha"
	}
	return core.ParameterSnapshot{Groups: []core.ParameterGroup{
		{
			Name: "Grid",
			Params: []core.Parameter{
				core.IntParam("M", "Rows", p.Rows),
				core.IntParam("N", "Cols", p.Cols),
				core.IntParam("I0", "Initial infected", p.I0),
				core.StringParam("seed", "Seed", seed),
			},
		},
		{
			Name: "Dynamics",
			Params: []core.Parameter{
				core.IntParam("T", "Steps", p.T),
				core.IntParam("r", "Radius", p.Radius),
				core.FloatParam("beta", "beta", p.Beta),
				core.FloatParam("alpha", recoveryLabel, p.Alpha),
			},
		},
	}}
}

// Controls lists the rates the viewer can nudge from the keyboard.
func Controls(recoveryLabel string) []core.ParameterControl {
	if recoveryLabel == "" {
		recoveryLabel = "alpha"
	}
	return []core.ParameterControl{
		{Key: "beta", Label: "beta", Step: 0.05, Min: 0, Max: 1},
		{Key: "alpha", Label: recoveryLabel, Step: 0.01, Min: 0, Max: 1},
	}
}

// Nudged returns a copy of p with the control's parameter moved by dir steps.
func (p Params) Nudged(ctrl core.ParameterControl, dir int) Params {
	switch ctrl.Key {
	case "beta":
		p.Beta = ctrl.Nudge(p.Beta, dir)
	case "alpha":
		p.Alpha = ctrl.Nudge(p.Alpha, dir)
	}
	return p
}
