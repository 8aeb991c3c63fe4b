package gatherapi

import (
	"fmt"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// ParseSetupKey extracts the TOTP key from enrollment material. The backend
// returns the QR payload as an otpauth:// URL; older deployments put the
// secret in its own field with no URL, so both shapes are accepted.
func ParseSetupKey(setup *TwoFASetup) (*otp.Key, error) {
	if strings.HasPrefix(setup.QRCode, "otpauth://") {
		key, err := otp.NewKeyFromURL(setup.QRCode)
		if err != nil {
			return nil, fmt.Errorf("failed to parse otpauth URL: %w", err)
		}
		return key, nil
	}

	if setup.Secret != "" {
		url := fmt.Sprintf(
			"otpauth://totp/%s:%s?secret=%s&issuer=%s",
			setup.Issuer, setup.Account, setup.Secret, setup.Issuer,
		)
		key, err := otp.NewKeyFromURL(url)
		if err != nil {
			return nil, fmt.Errorf("failed to build key from secret: %w", err)
		}
		return key, nil
	}

	return nil, fmt.Errorf("setup material carries neither otpauth URL nor secret")
}

// CurrentCode derives the 6-digit code for a TOTP secret at the given time.
// The CLI uses it when the operator passes --secret instead of reading a code
// off their authenticator.
func CurrentCode(secret string, at time.Time) (string, error) {
	code, err := totp.GenerateCode(secret, at)
	if err != nil {
		return "", fmt.Errorf("failed to derive TOTP code: %w", err)
	}
	return code, nil
}
