// Package media decodes inline-encoded attachments and stores the
// resulting blobs.
package media

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// DecodeError describes why an inline attachment could not be decoded.
// Its text travels to clients inside an error frame, so it carries no
// internal detail beyond the failure description.
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string {
	return e.Reason
}

// Decode splits a data URI of the form <descriptor>;base64,<payload>,
// decodes the payload and derives a file name from the descriptor's
// MIME subtype: image/png becomes file.png. The original file name, if
// any, is not preserved.
func Decode(dataURI string) ([]byte, string, error) {
	descriptor, payload, found := strings.Cut(dataURI, ";base64,")
	if !found {
		return nil, "", &DecodeError{Reason: "missing ;base64, separator"}
	}

	slash := strings.LastIndex(descriptor, "/")
	if slash < 0 || slash == len(descriptor)-1 {
		return nil, "", &DecodeError{Reason: fmt.Sprintf("no file extension derivable from %q", descriptor)}
	}
	ext := descriptor[slash+1:]
	fileName := fmt.Sprintf("file.%s", ext)

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", &DecodeError{Reason: fmt.Sprintf("invalid base64 payload: %v", err)}
	}

	return data, fileName, nil
}
