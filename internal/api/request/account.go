package request

// CreateAccountRequest represents the request body for creating an account.
// ID is optional; a UUID is generated when it is empty.
type CreateAccountRequest struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Owner         string   `json:"owner"`
	Institution   string   `json:"institution"`
	InstitutionID string   `json:"institutionId"`
	Description   string   `json:"description"`
	Tags          []string `json:"tags"`
}

// UpdateAccountRequest carries the fields to change; nil fields are left as they are.
type UpdateAccountRequest struct {
	Name          *string   `json:"name,omitempty"`
	Owner         *string   `json:"owner,omitempty"`
	Institution   *string   `json:"institution,omitempty"`
	InstitutionID *string   `json:"institutionId,omitempty"`
	Description   *string   `json:"description,omitempty"`
	Tags          *[]string `json:"tags,omitempty"`
}
