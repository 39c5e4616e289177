// Package model defines data structures for the lead streaming gateway.
package model

// Lead is the canonical business record produced by normalization.
// All fields are optional; records without a name are dropped by callers
// that require a display key. Leads carry no identity field and are never
// de-duplicated.
type Lead struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Website string `json:"website,omitempty"`
	Email   string `json:"email,omitempty"`
	Rating  string `json:"rating,omitempty"`
}

// ListLeadsResponse is the response for listing the current session's leads.
type ListLeadsResponse struct {
	Leads []Lead `json:"leads"`
	Total int    `json:"total"`
}
