package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"complaint-tracker-backend/internal/model"
)

// Token verification errors.
var (
	ErrMalformedToken = errors.New("token: malformed payload")
	ErrTamperedToken  = errors.New("token: signature mismatch")
)

// RoomIdentity is the set of room descriptor fields carried inside a signed
// QR token.
type RoomIdentity struct {
	BedNo      string `json:"bed_no"`
	RoomNo     string `json:"room_no"`
	Block      string `json:"block"`
	FloorNo    int    `json:"floor_no"`
	Ward       string `json:"ward"`
	Speciality string `json:"speciality"`
	RoomType   string `json:"room_type"`
	Status     string `json:"status"`
}

// IdentityFromRoom copies the descriptor fields of a room.
func IdentityFromRoom(r *model.Room) RoomIdentity {
	return RoomIdentity{
		BedNo:      r.BedNo,
		RoomNo:     r.RoomNo,
		Block:      r.Block,
		FloorNo:    r.FloorNo,
		Ward:       r.Ward,
		Speciality: r.Speciality,
		RoomType:   r.RoomType,
		Status:     r.Status,
	}
}

// Codec signs and verifies room tokens with HMAC-SHA256 keyed by a
// server-held secret. Payload and signature are base64url encoded so the
// token survives being embedded in a URL inside a printed QR code.
type Codec struct {
	secret []byte
}

// NewCodec creates a codec using the given signing secret.
func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

// Encode serializes the identity into its canonical JSON form and signs it.
// Deterministic: identical identity and secret always produce the same pair.
func (c *Codec) Encode(id RoomIdentity) (payload, signature string, err error) {
	raw, err := json.Marshal(id)
	if err != nil {
		return "", "", fmt.Errorf("marshal room identity: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw),
		base64.RawURLEncoding.EncodeToString(c.sign(raw)), nil
}

// Verify recomputes the MAC over the received payload and compares it to the
// received signature in constant time; a length mismatch and a content
// mismatch are indistinguishable to the caller.
func (c *Codec) Verify(payload, signature string) (RoomIdentity, error) {
	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return RoomIdentity{}, ErrMalformedToken
	}

	sig, err := base64.RawURLEncoding.DecodeString(signature)
	if err != nil {
		return RoomIdentity{}, ErrTamperedToken
	}
	if !hmac.Equal(sig, c.sign(raw)) {
		return RoomIdentity{}, ErrTamperedToken
	}

	var id RoomIdentity
	if err := json.Unmarshal(raw, &id); err != nil {
		return RoomIdentity{}, ErrMalformedToken
	}
	return id, nil
}

func (c *Codec) sign(raw []byte) []byte {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write(raw)
	return mac.Sum(nil)
}

// EnsureToken refreshes room.QRToken from the room's current identity.
// Idempotent: the stored value only changes when the room has no token yet
// or its identity fields changed since the token was generated. Reports
// whether the stored value was updated.
func (c *Codec) EnsureToken(room *model.Room) (bool, error) {
	payload, signature, err := c.Encode(IdentityFromRoom(room))
	if err != nil {
		return false, err
	}
	combined := Join(payload, signature)
	if room.QRToken == combined {
		return false, nil
	}
	room.QRToken = combined
	return true, nil
}

// Join combines payload and signature into the single value embedded in QR
// codes. Both parts are base64url, so '.' is unambiguous.
func Join(payload, signature string) string {
	return payload + "." + signature
}

// Split breaks a combined token back into payload and signature.
func Split(combined string) (payload, signature string, err error) {
	payload, signature, ok := strings.Cut(combined, ".")
	if !ok || payload == "" || signature == "" {
		return "", "", ErrMalformedToken
	}
	return payload, signature, nil
}
