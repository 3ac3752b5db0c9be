package domain

import "time"

// RowOutcome records how a single roster row finished one run.
type RowOutcome struct {
	Row      int       `json:"row"`
	FullName string    `json:"fullName"`
	Status   RowStatus `json:"status"`
	Detail   string    `json:"detail,omitempty"`
}

// Report summarizes one synchronization run across the roster.
type Report struct {
	Started  time.Time         `json:"started"`
	Finished time.Time         `json:"finished"`
	Counts   map[RowStatus]int `json:"counts"`
	Outcomes []RowOutcome      `json:"outcomes"`
}

// NewReport returns an empty report stamped with the start time.
func NewReport(started time.Time) Report {
	return Report{
		Started: started,
		Counts:  make(map[RowStatus]int),
	}
}

// Record appends one row outcome and bumps its status counter.
func (r *Report) Record(outcome RowOutcome) {
	if r.Counts == nil {
		r.Counts = make(map[RowStatus]int)
	}
	r.Counts[outcome.Status]++
	r.Outcomes = append(r.Outcomes, outcome)
}

// Processed returns the number of rows the run touched.
func (r Report) Processed() int {
	return len(r.Outcomes)
}

// Enrolled returns how many rows ended the run enrolled in the club.
func (r Report) Enrolled() int {
	return r.Counts[StatusAddedToClub]
}
