package twofactor

// OneTimeFactor is the second-factor credential supplied with an operation:
// either a current TOTP code or a single-use recovery code. Modeling the two
// as a closed sum type removes the ambiguity of "which optional string field
// was meant" at the API boundary.
type OneTimeFactor interface {
	isOneTimeFactor()
}

// TOTPCode is a 6-digit time-based code from an authenticator app.
type TOTPCode string

func (TOTPCode) isOneTimeFactor() {}

// RecoveryCode is a raw single-use recovery code.
type RecoveryCode string

func (RecoveryCode) isOneTimeFactor() {}
