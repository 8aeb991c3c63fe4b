package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gatherhall/gatherhall-go/pkg/gatherapi"
)

func TestIsTwoFactorChallenge(t *testing.T) {
	t.Parallel()

	require.True(t, isTwoFactorChallenge(&gatherapi.APIError{StatusCode: 401, Code: "2fa_required"}))
	require.True(t, isTwoFactorChallenge(&gatherapi.APIError{StatusCode: 401, Message: "2FA token required"}))
	require.False(t, isTwoFactorChallenge(&gatherapi.APIError{StatusCode: 401, Message: "invalid credentials"}))
	require.False(t, isTwoFactorChallenge(errors.New("connection refused")))
	require.False(t, isTwoFactorChallenge(nil))
}

func TestReportFieldErrorsOrdersOutput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	a := &App{out: &buf}

	require.True(t, a.reportFieldErrors(nil))
	require.Empty(t, buf.String())

	ok := a.reportFieldErrors(map[string]string{
		"password": "must be at least 8 characters",
		"email":    "invalid email address",
	})
	require.False(t, ok)
	require.Equal(t, "email: invalid email address\npassword: must be at least 8 characters\n", buf.String())
}
