package extraction

import "time"

// GroupReport is the outcome of one extraction request
type GroupReport struct {
	Group      string `json:"group"`
	Chunk      *int   `json:"chunk,omitempty"`
	Status     Status `json:"status"`
	Reason     string `json:"reason,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// Report lists the outcome of every request of one extraction
type Report struct {
	Groups         []GroupReport `json:"groups"`
	Defaulted      int           `json:"defaulted"`
	DiscardedRoles int           `json:"discarded_roles"`
}

// OK reports whether every group produced its own value
func (r Report) OK() bool {
	return r.Defaulted == 0
}

func (r *Report) add(group string, chunk *int, status Status, reason string, err error, d time.Duration) {
	g := GroupReport{
		Group:      group,
		Chunk:      chunk,
		Status:     status,
		Reason:     reason,
		DurationMS: d.Milliseconds(),
	}
	if err != nil {
		g.Error = err.Error()
	}
	if status == StatusDefaulted {
		r.Defaulted++
	}
	r.Groups = append(r.Groups, g)
}
