package model

import "time"

// Member roles as stored in the members.role column.  USER accounts make
// reservations and write reviews; OWNER accounts manage stores and approve
// or reject the reservations made against them.
const (
    RoleUser  = "USER"
    RoleOwner = "OWNER"
)

// Member represents an application member record as stored in the
// `members` table.  Each field corresponds to a column in the database.
// Handlers define separate response types with JSON tags; this struct is
// used internally by the repository and service layers.
//
// Fields:
//  ID           – primary key identifier of the member.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – USER or OWNER (see constants above).
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type Member struct {
    ID           uint64    // members.id
    Email        string    // members.email
    PasswordHash string    // members.password_hash
    Role         string    // members.role
    IsActive     bool      // members.is_active
    CreatedAt    time.Time // members.created_at
    UpdatedAt    time.Time // members.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a member and carries expiry and revocation
// metadata.  Only the SHA-256 hash of the raw token is persisted.
//
// Fields:
//  ID        – primary key identifier.
//  MemberID  – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
    ID        uint64     // refresh_tokens.id
    MemberID  uint64     // refresh_tokens.member_id
    TokenHash string     // refresh_tokens.token_hash
    ExpiresAt time.Time  // refresh_tokens.expires_at
    RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
    CreatedAt time.Time  // refresh_tokens.created_at
}
