package cqrs

// GetSelfQuery fetches the authenticated caller's account and public profile.
type GetSelfQuery struct {
	Email string
}

// ListAccountsQuery fetches up to Limit accounts in insertion order.
type ListAccountsQuery struct {
	Limit int
}
