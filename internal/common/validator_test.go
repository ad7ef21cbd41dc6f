package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type validatedInput struct {
	Title string   `json:"title" validate:"required,max=5"`
	Email string   `json:"email" validate:"omitempty,email"`
	Tags  []string `json:"tags" validate:"dive,required,max=3"`
}

func TestValidator_Check(t *testing.T) {
	v := NewValidator()

	v.Check(true, "title", "must be provided")
	assert.True(t, v.Valid())

	v.Check(false, "title", "must be provided")
	v.Check(false, "title", "second message is ignored")
	assert.False(t, v.Valid())
	assert.Equal(t, map[string]string{"title": "must be provided"}, v.Errors)
}

func TestValidator_CheckStringLength(t *testing.T) {
	v := NewValidator()

	assert.True(t, v.CheckStringLength("héllo", 1, 5))
	assert.False(t, v.CheckStringLength("", 1, 5))
	assert.False(t, v.CheckStringLength("toolong", 1, 5))
}

func TestValidator_Struct(t *testing.T) {
	testCases := []struct {
		name  string
		input validatedInput
		want  map[string]string
	}{
		{
			name:  "valid",
			input: validatedInput{Title: "ok", Tags: []string{"a"}},
			want:  map[string]string{},
		},
		{
			name:  "missing title",
			input: validatedInput{},
			want:  map[string]string{"title": "must be provided"},
		},
		{
			name:  "title too long and bad email",
			input: validatedInput{Title: "abcdef", Email: "nope"},
			want: map[string]string{
				"title": "must not be more than 5 characters long",
				"email": "must be a valid email address",
			},
		},
		{
			name:  "bad tag",
			input: validatedInput{Title: "ok", Tags: []string{"a", ""}},
			want:  map[string]string{"tags[1]": "must be provided"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := NewValidator()
			v.Struct(tc.input)
			assert.Equal(t, tc.want, v.Errors)
		})
	}
}
