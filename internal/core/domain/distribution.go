package domain

// DistributionReport summarizes one fan-out run. Companies land in exactly
// one bucket: a fresh copy was created, an existing copy was flagged, or
// the company's slice of work failed.
type DistributionReport struct {
	DocumentID string            `json:"document_id"`
	VersionID  string            `json:"version_id"`
	Created    []string          `json:"created,omitempty"`
	Flagged    []string          `json:"flagged,omitempty"`
	Failed     map[string]string `json:"failed,omitempty"` // companyID -> reason
}

// AllSucceeded reports whether every company was handled.
func (r *DistributionReport) AllSucceeded() bool {
	return len(r.Failed) == 0
}
