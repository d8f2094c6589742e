package service

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const defaultMFAIssuer = "PrimeOrganics"

// TOTPProvider implements the optional second login factor with RFC 6238
// time based codes.
type TOTPProvider struct {
	Issuer string
	Period uint
	Skew   uint
	Digits otp.Digits
	Now    func() time.Time
}

func NewTOTPProvider(issuer string) *TOTPProvider {
	return &TOTPProvider{
		Issuer: issuer,
		Period: 30,
		Skew:   1,
		Digits: otp.DigitsSix,
	}
}

func (p *TOTPProvider) GenerateSecret() (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      p.issuer(""),
		AccountName: "pending",
		Period:      p.opts().Period,
		Digits:      p.opts().Digits,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", err
	}
	return key.Secret(), nil
}

// QRCodeURL returns the otpauth:// URL authenticator apps import.
func (p *TOTPProvider) QRCodeURL(email string, issuer string, secret string) (string, error) {
	finalIssuer := p.issuer(issuer)
	opts := p.opts()
	query := url.Values{}
	query.Set("secret", secret)
	query.Set("issuer", finalIssuer)
	query.Set("algorithm", "SHA1")
	query.Set("digits", strconv.Itoa(opts.Digits.Length()))
	query.Set("period", strconv.FormatUint(uint64(opts.Period), 10))
	label := url.PathEscape(finalIssuer + ":" + email)
	return "otpauth://totp/" + label + "?" + query.Encode(), nil
}

func (p *TOTPProvider) ValidateCode(secret string, code string) bool {
	now := time.Now()
	if p.Now != nil {
		now = p.Now()
	}
	ok, err := totp.ValidateCustom(strings.TrimSpace(code), secret, now, p.opts())
	return err == nil && ok
}

func (p *TOTPProvider) opts() totp.ValidateOpts {
	opts := totp.ValidateOpts{
		Period:    p.Period,
		Skew:      p.Skew,
		Digits:    p.Digits,
		Algorithm: otp.AlgorithmSHA1,
	}
	if opts.Period == 0 {
		opts.Period = 30
	}
	if opts.Skew == 0 {
		opts.Skew = 1
	}
	if opts.Digits == 0 {
		opts.Digits = otp.DigitsSix
	}
	return opts
}

func (p *TOTPProvider) issuer(override string) string {
	if strings.TrimSpace(override) != "" {
		return override
	}
	if strings.TrimSpace(p.Issuer) != "" {
		return p.Issuer
	}
	return defaultMFAIssuer
}
