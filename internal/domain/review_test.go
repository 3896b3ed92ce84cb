package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewJSONNestsAuthor(t *testing.T) {
	review := Review{
		ID:     7,
		Review: "Lovely trip",
		Rating: 4,
		TourID: 3,
		UserID: 11,
		ReviewAuthor: ReviewAuthor{
			Name:  "Ada",
			Photo: "ada.jpg",
		},
		Version:   2,
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	out, err := json.Marshal(review)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &body))

	author, ok := body["author"].(map[string]interface{})
	require.True(t, ok, "author should be a nested object")
	assert.Equal(t, "Ada", author["name"])
	assert.Equal(t, "ada.jpg", author["photo"])

	// The embedded fields must not leak to the top level, and the
	// revision column stays internal.
	assert.NotContains(t, body, "name")
	assert.NotContains(t, body, "photo")
	assert.NotContains(t, body, "version")
}

func TestReviewRequestValidation(t *testing.T) {
	valid := CreateReviewRequest{Review: "Great", Rating: 5, TourID: 1}
	assert.NoError(t, valid.Validate())

	missing := CreateReviewRequest{Rating: 5}
	assert.Error(t, missing.Validate())

	outOfRange := CreateReviewRequest{Review: "Bad", Rating: 6}
	assert.Error(t, outOfRange.Validate())
}
