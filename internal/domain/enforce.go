package domain

// EnforceRequest is the question the RBAC layer answers: may this
// principal perform action on resource?
type EnforceRequest struct {
	UserID   string
	Role     string
	Resource string
	Action   string
}
