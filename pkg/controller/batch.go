package controller

import (
	"github.com/dougsko/rigd/pkg/rig"
)

// BatchRequest is a set of desired parameter changes submitted
// together. Field order is irrelevant; the optimizer derives the
// execution order. Nil fields are left untouched.
type BatchRequest struct {
	VFO       *rig.VFO
	Mode      *rig.Mode
	Frequency *int64
	Split     *bool
	RIT       *int
	Power     *float64
}

// BatchResult reports which changes committed and which were skipped
// after the first failure
type BatchResult struct {
	Applied []string
	Skipped []string
	Failed  string
	Err     error
}

type batchStep struct {
	name  string
	apply func() error
}

// Configure applies a batch of changes as a minimal safe sequence of
// individual transactions. Ordering is fixed by a small precedence set:
// VFO selection first so later writes land on the right register, mode
// before frequency because mode constrains tuning step, and power last
// to avoid a transient high-power state mid-reconfiguration. Execution
// short-circuits on the first failure.
func (s *Session) Configure(req BatchRequest) BatchResult {
	var steps []batchStep

	if req.VFO != nil {
		v := *req.VFO
		steps = append(steps, batchStep{"vfo", func() error { return s.SetVFO(v) }})
	}
	if req.Mode != nil {
		m := *req.Mode
		steps = append(steps, batchStep{"mode", func() error { return s.SetMode(m) }})
	}
	if req.Frequency != nil {
		hz := *req.Frequency
		steps = append(steps, batchStep{"frequency", func() error {
			vfo := s.ActiveVFO()
			if req.VFO != nil {
				vfo = *req.VFO
			}
			return s.SetFrequency(vfo, hz)
		}})
	}
	if req.Split != nil {
		on := *req.Split
		steps = append(steps, batchStep{"split", func() error { return s.SetSplit(on) }})
	}
	if req.RIT != nil {
		off := *req.RIT
		steps = append(steps, batchStep{"rit", func() error { return s.SetRIT(off) }})
	}
	if req.Power != nil {
		w := *req.Power
		steps = append(steps, batchStep{"power", func() error { return s.SetPower(w) }})
	}

	var result BatchResult
	for i, step := range steps {
		if err := step.apply(); err != nil {
			result.Failed = step.name
			result.Err = err
			for _, rest := range steps[i+1:] {
				result.Skipped = append(result.Skipped, rest.name)
			}
			return result
		}
		result.Applied = append(result.Applied, step.name)
	}
	return result
}
