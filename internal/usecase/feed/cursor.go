package feed

import (
	"encoding/base64"
	"encoding/json"
	"errors"
)

// ErrBadCursor is returned when a pagination token cannot be decoded.
var ErrBadCursor = errors.New("malformed feed cursor")

// cursor encodes pagination position: the generation cycle and how many
// items the caller has consumed in it. Opaque to clients.
type cursor struct {
	Generation string `json:"g"`
	Offset     int    `json:"o"`
}

func encodeCursor(c cursor) string {
	data, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(data)
}

func decodeCursor(token string) (cursor, error) {
	if token == "" {
		return cursor{}, nil
	}
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return cursor{}, ErrBadCursor
	}
	var c cursor
	if err := json.Unmarshal(data, &c); err != nil {
		return cursor{}, ErrBadCursor
	}
	if c.Offset < 0 || c.Generation == "" {
		return cursor{}, ErrBadCursor
	}
	return c, nil
}
