package models

// Credentials is a freshly generated username/password pair, surfaced
// exactly once in the response of the operation that minted it.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// StudentCredentials ties generated credentials to the created student.
type StudentCredentials struct {
	StudentID string `json:"student_id"`
	FullName  string `json:"full_name"`
	Credentials
}

// CredentialBundle aggregates every secret minted by a provisioning
// call. Guardian is nil when an existing guardian was reused.
type CredentialBundle struct {
	Guardian *Credentials         `json:"guardian,omitempty"`
	Students []StudentCredentials `json:"students"`
}

// TemporaryCredential is one row of the pending-credentials desk: an
// account that still carries its system-generated password.
type TemporaryCredential struct {
	AccountID         string `db:"account_id" json:"account_id"`
	Kind              string `db:"kind" json:"kind"`
	FullName          string `db:"full_name" json:"full_name"`
	Username          string `db:"username" json:"username"`
	TemporaryPassword string `db:"temporary_password" json:"temporary_password"`
}
