package gatherapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegisterMemberValidate(t *testing.T) {
	t.Parallel()

	t.Run("valid request", func(t *testing.T) {
		req := RegisterMemberRequest{
			FirstName: "Sam",
			LastName:  "Lee",
			Email:     "sam@example.com",
			Password:  "hunter2hunter2",
		}
		require.Nil(t, req.Validate())
	})

	t.Run("missing names", func(t *testing.T) {
		errs := RegisterMemberRequest{Email: "sam@example.com", Password: "hunter2hunter2"}.Validate()
		require.Contains(t, errs, "first_name")
		require.Contains(t, errs, "last_name")
	})

	t.Run("bad email", func(t *testing.T) {
		errs := RegisterMemberRequest{
			FirstName: "Sam", LastName: "Lee",
			Email: "not-an-email", Password: "hunter2hunter2",
		}.Validate()
		require.Contains(t, errs, "email")
	})

	t.Run("short password", func(t *testing.T) {
		errs := RegisterMemberRequest{
			FirstName: "Sam", LastName: "Lee",
			Email: "sam@example.com", Password: "short",
		}.Validate()
		require.Contains(t, errs, "password")
	})
}

func TestRegisterOrganizationValidate(t *testing.T) {
	t.Parallel()

	t.Run("valid request", func(t *testing.T) {
		req := RegisterOrganizationRequest{
			Name:     "Northside Makers",
			Email:    "hello@northside.example",
			Password: "makersmakers",
		}
		require.Nil(t, req.Validate())
	})

	t.Run("missing name", func(t *testing.T) {
		errs := RegisterOrganizationRequest{
			Email: "hello@northside.example", Password: "makersmakers",
		}.Validate()
		require.Contains(t, errs, "name")
	})
}

func TestRegisterMemberPostsForm(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/account/user", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "Sam", r.FormValue("first_name"))
		require.Equal(t, "sam@example.com", r.FormValue("email"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 12, "message": "verification code sent"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	resp, err := client.RegisterMember(context.Background(), RegisterMemberRequest{
		FirstName: "Sam", LastName: "Lee",
		Email: "sam@example.com", Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	require.Equal(t, int64(12), resp.ID)
}

func TestVerifyEmailOTP(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/account/verify-email-otp", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "sam@example.com", r.FormValue("email"))
		require.Equal(t, "482913", r.FormValue("otp"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "email verified"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	resp, err := client.VerifyEmailOTP(context.Background(), "sam@example.com", "482913")
	require.NoError(t, err)
	require.Equal(t, "email verified", resp.Message)
}
