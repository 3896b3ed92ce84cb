package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCreateTour() *CreateTourRequest {
	return &CreateTourRequest{
		Name:         "The Forest Hiker",
		Duration:     5,
		MaxGroupSize: 25,
		Difficulty:   "easy",
		Price:        397,
		Summary:      "Breathtaking hike through the Canadian Banff National Park",
		ImageCover:   "tour-1-cover.jpg",
	}
}

func TestCreateTourRequestValid(t *testing.T) {
	assert.NoError(t, validCreateTour().Validate())
}

func TestCreateTourRequestNameLength(t *testing.T) {
	req := validCreateTour()
	req.Name = "Too short"
	assert.Error(t, req.Validate())

	req.Name = "A name that is way too long to be accepted here"
	assert.Error(t, req.Validate())
}

func TestCreateTourRequestDifficultyEnum(t *testing.T) {
	req := validCreateTour()
	req.Difficulty = "extreme"
	assert.Error(t, req.Validate())
}

func TestCreateTourRequestDiscountBelowPrice(t *testing.T) {
	req := validCreateTour()

	discount := 500.0
	req.PriceDiscount = &discount
	assert.Error(t, req.Validate())

	discount = 100.0
	assert.NoError(t, req.Validate())
}

func TestCreateTourRequestCoordinateBounds(t *testing.T) {
	req := validCreateTour()

	lat := 91.0
	req.StartLat = &lat
	assert.Error(t, req.Validate())

	lat = 51.18
	lng := -115.57
	req.StartLat = &lat
	req.StartLng = &lng
	assert.NoError(t, req.Validate())
}

func TestTourJSONHidesInternalFields(t *testing.T) {
	out, err := json.Marshal(&Tour{Name: "The Forest Hiker", SecretTour: true, Version: 3})
	require.NoError(t, err)

	assert.NotContains(t, string(out), "secret_tour")
	assert.NotContains(t, string(out), "version")
}

func TestUserJSONHidesCredentials(t *testing.T) {
	hash := "$2a$12$abcdefghijklmnopqrstuv"
	token := "reset-token-hash"
	out, err := json.Marshal(&User{
		Name:               "Ada",
		PasswordHash:       hash,
		PasswordResetToken: &token,
	})
	require.NoError(t, err)

	assert.NotContains(t, string(out), hash)
	assert.NotContains(t, string(out), token)
	assert.NotContains(t, string(out), "password")
}
