package cqrs

type CreateAccountCommand struct {
	Name          string
	Email         string
	Password      string
	FBAccessToken string
}

// UpdateAccountCommand is a sparse update of the caller's own account.
// Nil fields are not touched.
type UpdateAccountCommand struct {
	RequestingEmail string
	Name            *string
	Email           *string
	Password        *string
	FBAccessToken   *string
}

type DeleteAccountCommand struct {
	RequestingEmail string
}

type LoginCommand struct {
	Email    string
	Password string
}
