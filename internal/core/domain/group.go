package domain

import "time"

// PublicationGroup is a named, admin-managed set of companies used as an
// alias in publish targets. Membership is read at resolution time only;
// later membership changes never affect past publications.
type PublicationGroup struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	MemberCount int       `json:"member_count"`
}
