package api

import (
	"encoding/json"

	"github.com/whisperchat/whisperd/server/protocol"
)

// errorFrame marshals a structured error payload. Error frames are
// published to the room group like any other result; publishing to a
// group with no subscribers is a no-op, which is what makes it safe to
// address a room id that never resolved.
func errorFrame(message string) ([]byte, error) {
	return json.Marshal(&protocol.ErrorBroadcast{Error: message})
}
