package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizePhoneConfluence(t *testing.T) {
	// differently punctuated equivalents must collide on the same canonical form
	inputs := []string{"01012345678", "1012345678", "10-1234-5678", "010 1234 5678", "(010) 1234-5678"}
	for _, in := range inputs {
		require.Equal(t, "010-1234-5678", NormalizePhone(in), "input %q", in)
	}
}

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"010-9999-8888", "010-9999-8888"},
		{"99998888", "010-9999-8888"},         // bare local part gets the prefix
		{"1099998888", "010-9999-8888"},       // dropped leading zero restored
		{"0212345678", "0100212345678"},       // not a mobile shape: raw digits kept
		{"01012345", "01012345"},               // too short to format
		{"010123456789012", "010123456789012"}, // too long to format
		{"", ""},
		{"abc-def", ""},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, NormalizePhone(tc.in), "input %q", tc.in)
	}
}

func TestNormalizePhoneIdempotent(t *testing.T) {
	for _, in := range []string{"010-1234-5678", "10 1234 5678", "12345678", "02 123 4567"} {
		once := NormalizePhone(in)
		require.Equal(t, once, NormalizePhone(once), "input %q", in)
	}
}
