package models

// Ref is the {"id": ...} shape the backend uses for relations
type Ref struct {
	ID string `json:"id"`
}

// Member is the subset of the backend member the service reads
type Member struct {
	ID              string `json:"id"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	PhoneNumber     string `json:"phoneNumber"`
	Role            string `json:"role,omitempty"`
	Group           *Group `json:"group,omitempty"`
	MansoftTenantID string `json:"mansoftTenantId"`
}

// Group is the subset of the backend group the service reads
type Group struct {
	ID        string `json:"id"`
	GroupName string `json:"groupName,omitempty"`
}
