package models

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/jaevor/go-nanoid"
)

// Room identifiers are opaque short tokens; message identifiers use a
// prefixed hex form so they are recognizable in logs. Users are created
// by an external system and arrive with their ids already minted.
var newRoomID = mustGenerator(nanoid.Standard(11))

func mustGenerator(gen func() string, err error) func() string {
	if err != nil {
		panic(err)
	}
	return gen
}

// GenerateRoomID generates an opaque room identifier
func GenerateRoomID() string {
	return newRoomID()
}

// GenerateMessageID generates a message identifier
func GenerateMessageID() string {
	b := make([]byte, 6)
	rand.Read(b) //nolint: errcheck
	return fmt.Sprintf("msg_%s", hex.EncodeToString(b))
}
