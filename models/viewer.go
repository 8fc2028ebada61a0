package models

// Viewer identifies who is making a request. The zero value is anonymous.
type Viewer struct {
	UserID   int64
	Username string
}

// Anonymous returns a viewer with no identity.
func Anonymous() Viewer {
	return Viewer{}
}

// ViewerFor returns a viewer identified as the given user.
func ViewerFor(u User) Viewer {
	return Viewer{UserID: u.ID, Username: u.Username}
}

// IsAnonymous reports whether the viewer carries no user identity.
func (v Viewer) IsAnonymous() bool {
	return v.UserID <= 0
}
