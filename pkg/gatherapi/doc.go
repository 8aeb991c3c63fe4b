/*
Package gatherapi provides a typed client for the GatherHall platform API.

# Overview

The Client wraps every backend round trip the CLI performs: account
registration, email verification, credential login for members and
organizations, the two-factor authentication endpoints, and a small events
surface. Each method is a single request/response pair; retries are a caller
concern.

	client := gatherapi.NewClient("https://api.gatherhall.example")

	resp, err := client.LoginMember(ctx, gatherapi.MemberCredentials{
		Email:    "sam@example.com",
		Password: "hunter2hunter2",
	})

# Session cookies

Authentication is cookie based. Construct the client with a cookie jar so the
server-issued session_token cookie flows back on subsequent requests:

	jar, _ := cookiejar.New(nil)
	client := gatherapi.NewClient(baseURL, gatherapi.WithCookieJar(jar))

The client never inspects the cookie's value. Callers that need to know
whether a session artifact exists should look at the jar, not the client.

# Unauthorized handling

A 401 response normally means the stored session is gone, and the configured
unauthorized hook fires so the application can send the user back to login.
Two endpoints are legitimately called mid-authentication, before the
application-level login is committed: TwoFAStatus and InitiateTwoFASetup.
Those requests carry the X-Suppress-Unauthorized-Redirect header, which the
transport honours by skipping the hook. Login attempts themselves are also
exempt, since a 401 there is an ordinary bad-credentials outcome.

# Encoding

All mutating requests are sent as multipart form data regardless of payload
shape. The backend requires this encoding; do not switch to JSON bodies.

# Errors

Failed calls return *APIError carrying the HTTP status and the server's
message. Transport failures are wrapped with context and returned as-is.
The client logs failures and rethrows; it never swallows an error.
*/
package gatherapi
