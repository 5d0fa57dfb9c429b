package token

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"complaint-tracker-backend/internal/model"
)

func testIdentity() RoomIdentity {
	return RoomIdentity{
		BedNo:      "101",
		RoomNo:     "A101",
		Block:      "A",
		FloorNo:    1,
		Ward:       "General",
		Speciality: "General",
		RoomType:   "Standard",
		Status:     "active",
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	codec := NewCodec("test-secret")

	payload, signature, err := codec.Encode(testIdentity())
	require.NoError(t, err)
	assert.NotEmpty(t, payload)
	assert.NotEmpty(t, signature)

	decoded, err := codec.Verify(payload, signature)
	require.NoError(t, err)
	assert.Equal(t, testIdentity(), decoded)
}

func TestCodec_Deterministic(t *testing.T) {
	codec := NewCodec("test-secret")

	p1, s1, err := codec.Encode(testIdentity())
	require.NoError(t, err)
	p2, s2, err := codec.Encode(testIdentity())
	require.NoError(t, err)

	assert.Equal(t, p1, p2)
	assert.Equal(t, s1, s2)
}

func TestCodec_TamperedSignature(t *testing.T) {
	codec := NewCodec("test-secret")

	payload, signature, err := codec.Encode(testIdentity())
	require.NoError(t, err)

	raw, err := base64.RawURLEncoding.DecodeString(signature)
	require.NoError(t, err)

	// Flipping any single byte of the signature must fail verification.
	for i := range raw {
		flipped := make([]byte, len(raw))
		copy(flipped, raw)
		flipped[i] ^= 0x01

		_, err := codec.Verify(payload, base64.RawURLEncoding.EncodeToString(flipped))
		assert.ErrorIs(t, err, ErrTamperedToken, "byte %d", i)
	}
}

func TestCodec_TamperedPayload(t *testing.T) {
	codec := NewCodec("test-secret")

	_, signature, err := codec.Encode(testIdentity())
	require.NoError(t, err)

	other := testIdentity()
	other.BedNo = "102"
	otherPayload, _, err := codec.Encode(other)
	require.NoError(t, err)

	_, err = codec.Verify(otherPayload, signature)
	assert.ErrorIs(t, err, ErrTamperedToken)
}

func TestCodec_WrongSecret(t *testing.T) {
	payload, signature, err := NewCodec("secret-a").Encode(testIdentity())
	require.NoError(t, err)

	_, err = NewCodec("secret-b").Verify(payload, signature)
	assert.ErrorIs(t, err, ErrTamperedToken)
}

func TestCodec_MalformedPayload(t *testing.T) {
	codec := NewCodec("test-secret")

	_, err := codec.Verify("not base64!!", "c2ln")
	assert.ErrorIs(t, err, ErrMalformedToken)

	// Valid base64 that is not JSON: the signature check runs first, so a
	// correctly signed garbage payload surfaces as malformed.
	garbage := base64.RawURLEncoding.EncodeToString([]byte("not json"))
	sig, err := codec.signFor(garbage)
	require.NoError(t, err)
	_, err = codec.Verify(garbage, sig)
	assert.ErrorIs(t, err, ErrMalformedToken)
}

// signFor signs an arbitrary pre-encoded payload, for tests only.
func (c *Codec) signFor(payload string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(c.sign(raw)), nil
}

func TestEnsureToken(t *testing.T) {
	codec := NewCodec("test-secret")

	room := &model.Room{
		BedNo:      "101",
		RoomNo:     "A101",
		Block:      "A",
		FloorNo:    1,
		Ward:       "General",
		Speciality: "General",
		RoomType:   "Standard",
		Status:     "active",
	}

	updated, err := codec.EnsureToken(room)
	require.NoError(t, err)
	assert.True(t, updated)
	first := room.QRToken
	require.NotEmpty(t, first)

	// Same identity: no new token.
	updated, err = codec.EnsureToken(room)
	require.NoError(t, err)
	assert.False(t, updated)
	assert.Equal(t, first, room.QRToken)

	// Changed identity: token refreshed.
	room.Ward = "Cardiology"
	updated, err = codec.EnsureToken(room)
	require.NoError(t, err)
	assert.True(t, updated)
	assert.NotEqual(t, first, room.QRToken)

	payload, signature, err := Split(room.QRToken)
	require.NoError(t, err)
	decoded, err := codec.Verify(payload, signature)
	require.NoError(t, err)
	assert.Equal(t, "Cardiology", decoded.Ward)
}

func TestSplit(t *testing.T) {
	_, _, err := Split("no-separator")
	assert.ErrorIs(t, err, ErrMalformedToken)

	payload, signature, err := Split("abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc", payload)
	assert.Equal(t, "def", signature)
}
