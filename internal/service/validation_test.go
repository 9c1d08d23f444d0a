package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDayValidation(t *testing.T) {
	for _, tc := range []struct {
		day string
		ok  bool
	}{
		{"2024-05-06", true},
		{"2024-02-29", true},
		{"2023-02-29", false},
		{"2024-13-01", false},
		{"06/05/2024", false},
		{"", false},
	} {
		err := validate.Var(tc.day, "day")
		assert.Equal(t, tc.ok, err == nil, tc.day)
	}
}
