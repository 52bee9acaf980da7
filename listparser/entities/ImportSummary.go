package entities

import "time"

// ImportSummary reports the outcome of one import run.
type ImportSummary struct {
	Source        string               `json:"source"`
	SnapshotDate  string               `json:"snapshotDate,omitempty"`
	LinesRead     int                  `json:"linesRead"`
	Accepted      int                  `json:"accepted"`
	Rejected      int                  `json:"rejected"`
	RejectReasons map[RejectReason]int `json:"rejectReasons,omitempty"`
	Inserted      int                  `json:"inserted"`
	Updated       int                  `json:"updated"`
	Conflicts     int                  `json:"conflicts,omitempty"`
	NotFound      int                  `json:"notFound,omitempty"`
	StartedAt     time.Time            `json:"startedAt"`
	Duration      time.Duration        `json:"-"`
}

// ExemptionUpdate marks one PZN from an exemption list, optionally with
// the manufacturer the list names.
type ExemptionUpdate struct {
	Pzn          string
	Manufacturer string
}

// Reject counts one rejected candidate.
func (s *ImportSummary) Reject(reason RejectReason) {
	if s.RejectReasons == nil {
		s.RejectReasons = make(map[RejectReason]int)
	}
	s.RejectReasons[reason]++
	s.Rejected++
}
