package ldapdir

import (
	"testing"

	"github.com/go-ldap/ldap/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsGUID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{
			name:     "valid hyphenated GUID",
			input:    "12345678-1234-1234-1234-123456789012",
			expected: true,
		},
		{
			name:     "valid compact GUID",
			input:    "12345678123412341234123456789012",
			expected: true,
		},
		{
			name:     "empty string",
			input:    "",
			expected: false,
		},
		{
			name:     "too short",
			input:    "12345678-1234",
			expected: false,
		},
		{
			name:     "non-hex characters",
			input:    "12345678-1234-1234-1234-12345678901g",
			expected: false,
		},
		{
			name:     "SMTP address",
			input:    "finance@example.com",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isGUID(tt.input))
		})
	}
}

func TestGUIDByteConversion(t *testing.T) {
	// The first three groups swap byte order on the wire, the last two keep it.
	guid := "01020304-0506-0708-090a-0b0c0d0e0f10"
	wire := []byte{
		0x04, 0x03, 0x02, 0x01,
		0x06, 0x05,
		0x08, 0x07,
		0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10,
	}

	b, err := guidToBytes(guid)
	require.NoError(t, err)
	assert.Equal(t, wire, b)

	s, err := guidBytesToString(wire)
	require.NoError(t, err)
	assert.Equal(t, guid, s)
}

func TestGUIDBytesToString_RoundTrip(t *testing.T) {
	guid := "e6f2a3b4-1c2d-4e5f-8a9b-0c1d2e3f4a5b"

	b, err := guidToBytes(guid)
	require.NoError(t, err)
	require.Len(t, b, guidBytesLength)

	back, err := guidBytesToString(b)
	require.NoError(t, err)
	assert.Equal(t, guid, back)
}

func TestGUIDBytesToString_InvalidLength(t *testing.T) {
	_, err := guidBytesToString([]byte{0x01, 0x02, 0x03})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid objectGUID length")
}

func TestGUIDToBytes_InvalidInput(t *testing.T) {
	_, err := guidToBytes("not-a-guid")
	require.Error(t, err)
}

func TestGUIDFilter(t *testing.T) {
	guid := "01020304-0506-0708-090a-0b0c0d0e0f10"

	filter, err := guidFilter(guid)
	require.NoError(t, err)

	wire, err := guidToBytes(guid)
	require.NoError(t, err)
	assert.Equal(t, "(objectGUID="+ldap.EscapeFilter(string(wire))+")", filter)
}
