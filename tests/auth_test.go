package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuth(t *testing.T) {
	_, token := registerUser(t, "auth_user")
	require.NotEmpty(t, token)

	// duplicate username is rejected
	status, _ := request(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "auth_user",
		"email":    "other@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusConflict, status)

	// login with username
	status, body := request(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "auth_user",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, body["token"])

	// login with email works too
	status, _ = request(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "auth_user@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, status)

	// wrong password
	status, _ = request(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "auth_user",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	// profile requires a token
	status, _ = request(t, http.MethodGet, "/api/user/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body = request(t, http.MethodGet, "/api/user/profile", body["token"].(string), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "auth_user", body["username"])

	// admin surface is closed to regular users
	status, _ = request(t, http.MethodPost, "/api/admin/tests", token, map[string]string{"title": "nope"})
	assert.Equal(t, http.StatusForbidden, status)
}

func TestProfileUpdate(t *testing.T) {
	_, token := registerUser(t, "profile_user")

	status, _ := request(t, http.MethodPut, "/api/user/profile", token, map[string]string{
		"target_exam": "UPSC",
		"phone":       "9000000000",
	})
	require.Equal(t, http.StatusOK, status)

	status, body := request(t, http.MethodGet, "/api/user/profile", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "UPSC", body["target_exam"])
	assert.Equal(t, "9000000000", body["phone"])
}
