package alarm

import (
	"encoding/binary"
	"strconv"

	"github.com/google/uuid"
)

// SnoozeIDPrefix marks identifiers of alarms created by a snooze.
const SnoozeIDPrefix = "snooze-"

// GenerateID returns a short opaque token built from the random half of a
// version 4 UUID. Collisions are unlikely enough for a single local list.
func GenerateID() string {
	id := uuid.New()

	return strconv.FormatUint(binary.BigEndian.Uint64(id[8:]), 36)
}
