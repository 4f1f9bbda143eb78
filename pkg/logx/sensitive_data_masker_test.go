package logx_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"p2p_market/pkg/logx"
)

func TestSensitiveDataMasker(t *testing.T) {
	rq := require.New(t)

	masker := logx.NewSensitiveDataMasker()

	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Bearer token",
			input:    "Authorization: Bearer secret-token\r\n",
			expected: "Authorization: Bearer [MASKED]\r\n",
		},
		{
			name:     "Password field",
			input:    `{"password": "hunter2"}`,
			expected: `{"password": "[MASKED]"}`,
		},
		{
			name:     "Payment details",
			input:    `{"paymentDetails": "DE89 3704 0044 0532 0130 00"}`,
			expected: `{"paymentDetails": "[MASKED]"}`,
		},
		{
			name:     "Display name",
			input:    `{"displayName": "satoshi_n"}`,
			expected: `{"displayName": "[MASKED]"}`,
		},
		{
			name:     "Plain offer payload untouched",
			input:    `{"minAmount": "50", "maxAmount": "500"}`,
			expected: `{"minAmount": "50", "maxAmount": "500"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq.Equal(tc.expected, string(masker.Mask([]byte(tc.input))))
		})
	}

	rq.Equal("as-is", string(logx.NewNopSensitiveDataMasker().Mask([]byte("as-is"))))
}
