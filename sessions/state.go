package sessions

import "github.com/jrsteele09/go-kyc-client/users"

// State is one consistent snapshot of the client session. Absent strings are empty and an
// absent user is nil. IsAuthenticated is true exactly when User, Token and RefreshToken are
// all present.
type State struct {
	IsAuthenticated bool        // A token is currently believed valid
	User            *users.User // Last known identity, present iff authenticated
	Token           string      // Bearer credential for API calls
	RefreshToken    string      // Credential used only to mint new tokens
	Loading         bool        // A login or register call is in flight
	Error           string      // Last failure message
}

// IsAdmin reports whether the session user is an administrator.
func (s State) IsAdmin() bool {
	return s.User.IsAdmin()
}

// IsOperator reports whether the session user is a compliance operator.
func (s State) IsOperator() bool {
	return s.User.IsOperator()
}

// clone deep copies the user so the snapshot shares nothing with the live record.
func (s State) clone() State {
	s.User = s.User.Clone()
	return s
}

func loggedOut() State {
	return State{}
}

func authenticated(user *users.User, token, refreshToken string) State {
	return State{
		IsAuthenticated: true,
		User:            user.Clone(),
		Token:           token,
		RefreshToken:    refreshToken,
	}
}
