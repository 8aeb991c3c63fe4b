package session

import (
	"encoding/json"
	"fmt"

	"github.com/gatherhall/gatherhall-go/pkg/cryptox"
)

// Codec is the serialize/deserialize boundary between the domain types and
// the drivers. Everything crossing it is JSON-marshalled and sealed, so the
// drivers only ever handle opaque blobs.
type Codec struct {
	sealer *cryptox.Sealer
}

// NewCodec builds a Codec over the given sealer.
func NewCodec(sealer *cryptox.Sealer) *Codec {
	return &Codec{sealer: sealer}
}

// EncodeSession seals a session for storage.
func (c *Codec) EncodeSession(s Session) ([]byte, error) {
	plain, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}
	return c.sealer.Seal(plain)
}

// DecodeSession unseals a stored session.
func (c *Codec) DecodeSession(sealed []byte) (Session, error) {
	plain, err := c.sealer.Open(sealed)
	if err != nil {
		return Session{}, fmt.Errorf("failed to unseal session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(plain, &s); err != nil {
		return Session{}, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return s, nil
}

// EncodeCookie seals a cookie record for storage.
func (c *Codec) EncodeCookie(rec CookieRecord) ([]byte, error) {
	plain, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cookie: %w", err)
	}
	return c.sealer.Seal(plain)
}

// DecodeCookie unseals a stored cookie record.
func (c *Codec) DecodeCookie(sealed []byte) (CookieRecord, error) {
	plain, err := c.sealer.Open(sealed)
	if err != nil {
		return CookieRecord{}, fmt.Errorf("failed to unseal cookie: %w", err)
	}

	var rec CookieRecord
	if err := json.Unmarshal(plain, &rec); err != nil {
		return CookieRecord{}, fmt.Errorf("failed to unmarshal cookie: %w", err)
	}
	return rec, nil
}
