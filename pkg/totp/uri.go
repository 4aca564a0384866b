package totp

import (
	"fmt"
	"net/url"
)

// URIParams describes a key for authenticator-app provisioning.
type URIParams struct {
	Secret      string // Base32-encoded TOTP seed (required)
	AccountName string // user identifier such as an email address (required)
	Issuer      string // service name shown in authenticator apps (required)
}

func (p URIParams) validate() error {
	if p.Secret == "" {
		return ErrMissingSecret
	}
	if !secretRegex.MatchString(p.Secret) {
		return ErrInvalidSecret
	}
	if p.AccountName == "" {
		return ErrMissingAccountName
	}
	if p.Issuer == "" {
		return ErrMissingIssuer
	}
	return nil
}

// ProvisioningURI builds an otpauth:// URI following the Key Uri Format:
// https://github.com/google/google-authenticator/wiki/Key-Uri-Format
func ProvisioningURI(params URIParams) (string, error) {
	if err := params.validate(); err != nil {
		return "", err
	}

	label := fmt.Sprintf("%s:%s",
		url.PathEscape(params.Issuer),
		url.PathEscape(params.AccountName),
	)

	query := url.Values{}
	query.Set("secret", params.Secret)
	query.Set("issuer", params.Issuer)
	query.Set("algorithm", "SHA1")
	query.Set("digits", fmt.Sprintf("%d", Digits))
	query.Set("period", fmt.Sprintf("%d", Period))

	return fmt.Sprintf("otpauth://totp/%s?%s", label, query.Encode()), nil
}
