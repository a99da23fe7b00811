package utility

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConstantTimeEquals(t *testing.T) {
	testcases := []struct {
		Name     string
		Token    string
		Secret   string
		Expected bool
	}{
		{Name: "Equal tokens", Token: "super-secret", Secret: "super-secret", Expected: true},
		{Name: "Different tokens", Token: "spam", Secret: "super-secret", Expected: false},
		{Name: "Different length", Token: "super-secret-but-longer", Secret: "super-secret", Expected: false},
		{Name: "Empty token", Token: "", Secret: "super-secret", Expected: false},
		{Name: "Both empty", Token: "", Secret: "", Expected: true},
	}

	for _, testcase := range testcases {
		t.Run(testcase.Name, func(t *testing.T) {
			require.Equal(t, testcase.Expected, ConstantTimeEquals(testcase.Token, testcase.Secret))
		})
	}
}
