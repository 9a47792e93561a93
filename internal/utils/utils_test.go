package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConfigPrefersEnvironment(t *testing.T) {
	t.Setenv("APP_PORT", "")
	assert.Equal(t, "8000", GetConfig("APP_PORT"))

	t.Setenv("APP_PORT", "9090")
	assert.Equal(t, "9090", GetConfig("APP_PORT"))
	assert.Equal(t, 9090, GetConfigInt("APP_PORT", 1))

	t.Setenv("APP_PORT", "not-a-number")
	assert.Equal(t, 1, GetConfigInt("APP_PORT", 1))
}

func TestIsDevelopment(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	assert.False(t, IsDevelopment())

	t.Setenv("APP_ENV", "development")
	assert.True(t, IsDevelopment())
}

type signup struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,username"`
	Password string `json:"password" validate:"required,min=8"`
	Avatar   string `json:"avatar" validate:"omitempty,base64image"`
}

func TestValidationMessages(t *testing.T) {
	InitValidator()

	err := Validate.Struct(signup{
		Email:    "nope",
		Username: "has space",
		Password: "short",
		Avatar:   "https://example.com/a.png",
	})
	require.Error(t, err)

	messages := ValidationMessages(err)
	assert.Equal(t, "Enter a valid email address.", messages["email"])
	assert.Equal(t, "Enter a valid username. Letters, digits and @/./+/-/_ only.", messages["username"])
	assert.Equal(t, "Ensure this field has at least 8 characters.", messages["password"])
	assert.Equal(t, "Upload a valid image encoded as a base64 data URI.", messages["avatar"])
	assert.Len(t, messages, 4)
}

func TestValidationMessagesIgnoresOtherErrors(t *testing.T) {
	assert.Nil(t, ValidationMessages(assert.AnError))
}

func TestUsernameRule(t *testing.T) {
	InitValidator()

	for _, name := range []string{"alice", "Иван", "chef.42", "a+b@c-d_e"} {
		assert.NoError(t, Validate.Var(name, "username"), name)
	}
	for _, name := range []string{"has space", "semi;colon", "slash/", "emoji🍰"} {
		assert.Error(t, Validate.Var(name, "username"), name)
	}
}

func TestNotBlankRule(t *testing.T) {
	InitValidator()

	assert.NoError(t, Validate.Var("Pancakes", "notblank"))
	assert.Error(t, Validate.Var("   ", "notblank"))
	assert.Error(t, Validate.Var("\t\n", "notblank"))
}
