package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sampleRequest struct {
	Email        string `validate:"required,email"`
	Password     string `validate:"required,pwdmin"`
	Confirmation string `validate:"eqfield=Password"`
	Platform     string `validate:"oneof=instagram tiktok"`
	TargetURL    string `validate:"httpurl"`
	Count        int    `validate:"positive"`
	ID           uint   `validate:"positive"`
}

func valid() sampleRequest {
	return sampleRequest{
		Email:        "a@b.com",
		Password:     "secret1",
		Confirmation: "secret1",
		Platform:     "instagram",
		TargetURL:    "https://example.com/x",
		Count:        3,
		ID:           1,
	}
}

func TestValidateStruct(t *testing.T) {
	assert.NoError(t, ValidateStruct(valid()))

	r := valid()
	r.Email = "not-an-email"
	assert.Error(t, ValidateStruct(r))

	r = valid()
	r.Password = "short"
	assert.Error(t, ValidateStruct(r))

	r = valid()
	r.Confirmation = "different"
	assert.Error(t, ValidateStruct(r))

	r = valid()
	r.Platform = "myspace"
	assert.Error(t, ValidateStruct(r))

	r = valid()
	r.TargetURL = "ftp://example.com"
	assert.Error(t, ValidateStruct(r))

	r = valid()
	r.Count = 0
	assert.Error(t, ValidateStruct(r))

	r = valid()
	r.ID = 0
	assert.Error(t, ValidateStruct(r))
}
