package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveName(t *testing.T) {
	cases := map[string]string{
		"Student's Reading Level?": "student_s_reading_level",
		"Grade":                    "grade",
		"  Already   spaced  ":     "already_spaced",
		"UPPER CASE":               "upper_case",
		"__weird--input__":         "weird_input",
		"123 go":                   "123_go",
		"":                         "",
	}
	for input, expected := range cases {
		assert.Equal(t, expected, DeriveName(input), "input %q", input)
	}
}

func TestDeriveNameNoLeadingOrTrailingUnderscore(t *testing.T) {
	got := DeriveName("?!leading and trailing!?")
	assert.Equal(t, "leading_and_trailing", got)
}
