package entity

type RegisterRequest struct {
	Email      string `json:"email"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Role       string `json:"role"`
	Password   string `json:"password"`
	Phone      string `json:"phone"`
	FamilyName string `json:"familyName"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	User         User   `json:"user"`
}

type TokenClaims struct {
	UserId string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// EntraClaims are the identity fields extracted from a verified federated
// access token.
type EntraClaims struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// PasswordResetTicket is handed to the (out-of-scope) mailer after a
// forgot-password request. The token is never persisted in Mongo; it lives in
// the TTL'd token store until consumed.
type PasswordResetTicket struct {
	Email     string `json:"email"`
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn"` // seconds
}
