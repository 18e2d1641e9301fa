package importer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// IsOutgoingType reports whether a Signal/MMS base message type value
// (after masking off flag bits) represents an outgoing message, matching
// is_outgoing_type in the original source.
func IsOutgoingType(msgType int64) bool {
	base := uint64(msgType) & 0x1F
	switch base {
	case 21, 22, 23, 24, 25, 26, 2, 11:
		return true
	default:
		return false
	}
}

// DedupeKey builds a message's canonical dedupe key: "<kind>:<foreignID>"
// when foreignID is positive, else a SHA-256 fallback over the canonical
// tuple, prefixed "fb:". Matches dedupe key construction in importer.rs.
func DedupeKey(kind string, foreignID int64, threadID, senderID string, timestamp int64, msgType string, outgoing bool, body *string) string {
	if foreignID > 0 {
		return fmt.Sprintf("%s:%d", kind, foreignID)
	}
	return FallbackDedupeKey(kind, threadID, senderID, timestamp, msgType, outgoing, body)
}

// FallbackDedupeKey builds the "fb:<sha256>" dedupe key for rows lacking a
// usable foreign id, matching fallback_dedupe_key exactly: the hashed tuple
// is "kind|thread|sender|ts|type|outgoing|body_sha256", where body_sha256
// is the literal string "none" when body is null.
func FallbackDedupeKey(kind, threadID, senderID string, timestamp int64, msgType string, outgoing bool, body *string) string {
	bodyHash := "none"
	if body != nil {
		sum := sha256.Sum256([]byte(*body))
		bodyHash = hex.EncodeToString(sum[:])
	}
	outgoingFlag := "0"
	if outgoing {
		outgoingFlag = "1"
	}
	tuple := fmt.Sprintf("%s|%s|%s|%d|%s|%s|%s", kind, threadID, senderID, timestamp, msgType, outgoingFlag, bodyHash)
	sum := sha256.Sum256([]byte(tuple))
	return "fb:" + hex.EncodeToString(sum[:])
}
