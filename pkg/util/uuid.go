package util

import (
	"crypto/md5"
	"encoding/json"

	"github.com/google/uuid"
)

// StreamID names a byte stream by the md5 of its content, formatted as a UUID
func StreamID(data []byte) string {
	sum := md5.Sum(data)
	id, err := uuid.FromBytes(sum[:])
	if err != nil {
		return ""
	}
	return id.String()
}

// HashUUID is StreamID over the json encoding of value
func HashUUID(value any) string {
	raw, err := json.Marshal(value)
	if err != nil {
		return ""
	}
	return StreamID(raw)
}
