package jwt

// Header represents the JWT header as defined in RFC 7515. Extra caller
// headers are carried separately so the two required fields stay typed.
type Header struct {
	Type      string `json:"typ"`
	Algorithm string `json:"alg"`
}

// Claims holds the registered JWT claims defined in RFC 7519 Section 4.1.
// Temporal claims use Unix timestamps in seconds. Embed Claims in a payload
// struct to carry application fields alongside the registered set.
type Claims struct {
	ID        string `json:"jti,omitempty"`
	Subject   string `json:"sub,omitempty"`
	Issuer    string `json:"iss,omitempty"`
	Audience  string `json:"aud,omitempty"`
	IssuedAt  int64  `json:"iat,omitempty"`
	NotBefore int64  `json:"nbf,omitempty"`
	ExpiresAt int64  `json:"exp,omitempty"`
}

// Expected carries the claim values a caller requires during verification.
// Zero-valued fields are not checked.
type Expected struct {
	Subject  string
	Issuer   string
	Audience string
}
