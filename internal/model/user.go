package model

import "time"

// Role identifies what a user account is allowed to do.  The values
// are stored verbatim in the users.role column and carried in the
// "role" claim of access tokens.
type Role string

const (
	RoleCustomer Role = "CUSTOMER" // rider: creates and joins slots
	RoleDriver   Role = "DRIVER"   // operates a vehicle, accepts slots
	RoleAdmin    Role = "ADMIN"    // back-office list views
)

// ValidRole reports whether s is one of the known role values.
func ValidRole(s string) bool {
	switch Role(s) {
	case RoleCustomer, RoleDriver, RoleAdmin:
		return true
	}
	return false
}

// User represents an application user record as stored in the `users`
// table.  Each field corresponds to a column in the database.  The json
// tags are omitted here because these structs are primarily used
// internally by the repository layer; handlers define separate response
// types with appropriate JSON tags.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique login name.
//  Email        – unique email address.
//  Phone        – contact phone number.
//  PasswordHash – bcrypt hashed password.
//  Role         – account role (CUSTOMER, DRIVER, ADMIN).
//  College      – optional campus affiliation.
//  Address      – optional free-form address.
//  ImageURL     – optional profile image URL (object storage is external).
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Username     string    // users.username
	Email        string    // users.email
	Phone        string    // users.phone
	PasswordHash string    // users.password_hash
	Role         Role      // users.role
	College      *string   // users.college (nullable)
	Address      *string   // users.address (nullable)
	ImageURL     *string   // users.image_url (nullable)
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user and contains metadata for expiry and
// revocation.  The plain token is not stored; only its SHA-256 hash.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
