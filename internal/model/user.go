package model

import "time"

// AdminLevel is the minimum user_level that grants privileged mutations.
const AdminLevel = 10

// User is an account inside the referral hierarchy. Referrer holds the
// username of the inviting user; blank means this user is a hierarchy root.
type User struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	Firstname    string    `db:"firstname" json:"firstname"`
	Lastname     string    `db:"lastname" json:"lastname"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Status       string    `db:"status" json:"status"` // active|suspended
	Referrer     string    `db:"referrer" json:"referrer,omitempty"`
	UserLevel    int       `db:"user_level" json:"user_level"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

func (u User) IsAdmin() bool { return u.UserLevel >= AdminLevel }

// UserRef is the minimal projection used to build the referral adjacency.
type UserRef struct {
	Username string `db:"username"`
	Referrer string `db:"referrer"`
}

// Principal is the authenticated identity threaded explicitly through every
// operation, never pulled from ambient request state.
type Principal struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// UserPatch lists the account fields an admin update intends to change.
// Same contract as RecordPatch: nil or blank-after-trim means no change.
type UserPatch struct {
	Username  *string `json:"username,omitempty"`
	Firstname *string `json:"firstname,omitempty"`
	Lastname  *string `json:"lastname,omitempty"`
	Email     *string `json:"email,omitempty"`
	Status    *string `json:"status,omitempty"`
	Referrer  *string `json:"referrer,omitempty"`
	UserLevel *int    `json:"user_level,omitempty"`
}

// UserPage mirrors Page for user listings.
type UserPage struct {
	Users []User `json:"users"`
	Total int64  `json:"total"`
}
