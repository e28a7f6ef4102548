package domain

import "time"

// Prospect is a lead captured by a field rep. deal_value and assigned_to are
// nullable in the store; nil means "no deal yet" and "unassigned".
type Prospect struct {
	ID            string    `json:"id"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Company       string    `json:"company,omitempty"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email,omitempty"`
	Address       string    `json:"address,omitempty"`
	Need          string    `json:"need,omitempty"`
	Status        string    `json:"status"`
	DealValue     *float64  `json:"deal_value,omitempty"`
	AssignedTo    *string   `json:"assigned_to,omitempty"`
	GoogleMapLink string    `json:"google_map_link,omitempty"`
	Comments      string    `json:"comments,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	AssignedRep   *RepBadge `json:"assigned_profile,omitempty"`
}

// RepBadge is the joined slice of the assignee's profile embedded in
// prospect reads (PostgREST resource embedding).
type RepBadge struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// FullName joins first and last name for display and search.
func (p *Prospect) FullName() string {
	return p.FirstName + " " + p.LastName
}

// NormalizedStatus resolves the raw status string once.
func (p *Prospect) NormalizedStatus() ProspectStatus {
	return NormalizeStatus(p.Status)
}

// AssigneeName returns the joined assignee display name, or empty when the
// prospect is unassigned or the join came back empty.
func (p *Prospect) AssigneeName() string {
	if p.AssignedRep == nil {
		return ""
	}
	return p.AssignedRep.FirstName + " " + p.AssignedRep.LastName
}

// CreateProspectRequest is the field-app submission payload.
type CreateProspectRequest struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Company       string `json:"company,omitempty"`
	Phone         string `json:"phone"`
	Email         string `json:"email,omitempty"`
	Address       string `json:"address,omitempty"`
	Need          string `json:"need,omitempty"`
	Comments      string `json:"comments,omitempty"`
	GoogleMapLink string `json:"google_map_link,omitempty"`
	AssignedTo    string `json:"assigned_to,omitempty"`
}

// UpdateProspectRequest carries the mutable fields of a status/deal update.
// Pointers distinguish "not sent" from explicit zero values.
type UpdateProspectRequest struct {
	Status     *string  `json:"status,omitempty"`
	DealValue  *float64 `json:"deal_value,omitempty"`
	AssignedTo *string  `json:"assigned_to,omitempty"`
	Need       *string  `json:"need,omitempty"`
	Comments   *string  `json:"comments,omitempty"`
}
