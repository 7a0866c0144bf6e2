package model

// Session is the persisted authentication document. A nil User means
// unauthenticated. The full user record is embedded for document-layout
// compatibility; consumers should resolve the live record by id rather
// than trusting the embedded copy.
type Session struct {
	User *User `json:"user"`
}
