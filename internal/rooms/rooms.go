// Package rooms computes chat room identifiers.
//
// A private room between two users is addressed by sorting the two user ids
// and joining them with Delimiter, so both participants resolve the same id
// no matter who opens the conversation. The group room has a fixed id.
package rooms

import (
	"errors"
	"strings"
)

// GroupID is the id of the single room shared by every user.
const GroupID = "group"

// Delimiter separates the two participant ids of a private room id.
const Delimiter = "_"

// ErrInvalidParticipant is returned for empty, equal or delimiter-bearing user ids.
var ErrInvalidParticipant = errors.New("invalid participant")

// ID returns the private room id for users a and b.
// ID(a, b) == ID(b, a) for every valid pair.
func ID(a, b string) (string, error) {
	pair, err := Pair(a, b)
	if err != nil {
		return "", err
	}
	return pair[0] + Delimiter + pair[1], nil
}

// Pair validates a and b and returns them in ascending order.
func Pair(a, b string) ([2]string, error) {
	if err := validate(a); err != nil {
		return [2]string{}, err
	}
	if err := validate(b); err != nil {
		return [2]string{}, err
	}
	if a == b {
		// no self-chat
		return [2]string{}, ErrInvalidParticipant
	}
	if b < a {
		a, b = b, a
	}
	return [2]string{a, b}, nil
}

// Participants splits a private room id back into its sorted pair.
// ok is false for the group room and for ids that were not built by ID.
func Participants(roomID string) (pair [2]string, ok bool) {
	first, second, found := strings.Cut(roomID, Delimiter)
	if !found || first == "" || second == "" || strings.Contains(second, Delimiter) {
		return pair, false
	}
	if first >= second {
		return pair, false
	}
	return [2]string{first, second}, true
}

// IsGroup reports whether roomID addresses the group room.
func IsGroup(roomID string) bool { return roomID == GroupID }

// IsPrivate reports whether roomID is a well-formed private room id.
func IsPrivate(roomID string) bool {
	_, ok := Participants(roomID)
	return ok
}

// IsMember reports whether userID may read and write roomID.
// Everyone is a member of the group room.
func IsMember(roomID, userID string) bool {
	if IsGroup(roomID) {
		return true
	}
	pair, ok := Participants(roomID)
	if !ok {
		return false
	}
	return pair[0] == userID || pair[1] == userID
}

func validate(id string) error {
	if strings.TrimSpace(id) == "" || strings.Contains(id, Delimiter) {
		return ErrInvalidParticipant
	}
	return nil
}
