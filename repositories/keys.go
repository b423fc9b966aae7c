package repositories

import (
	"fmt"
	"groupchat/domain"
	"strconv"
	"strings"
	"time"
)

// Keys are zero padded to 19 digits so lexicographical order follows numeric order.
const (
	groupPrefix     = "group:"
	groupNamePrefix = "idx:group:name:"
	messagePrefix   = "msg:"
	messageIDPrefix = "idx:msg:id:"
	userPrefix      = "user:"
	userIDPrefix    = "idx:user:id:"

	groupSequence     = "seq:group"
	messageSequence   = "seq:msg"
	sequenceBandwidth = 100
)

func groupKey(id domain.GroupID) []byte {
	return []byte(fmt.Sprintf("%s%019d", groupPrefix, id))
}

// groupNameKey sorts groups by name, then by id for duplicate names.
func groupNameKey(name string, id domain.GroupID) []byte {
	return []byte(fmt.Sprintf("%s%s\x00%019d", groupNamePrefix, name, id))
}

func groupIDFromNameKey(key []byte) (domain.GroupID, error) {
	k := string(key)
	sep := strings.LastIndexByte(k, 0)
	if sep < 0 {
		return 0, fmt.Errorf("malformed group index key %q", k)
	}
	id, err := strconv.ParseInt(k[sep+1:], 10, 64)
	return domain.GroupID(id), err
}

// messageKey is "msg:{group}:{timestamp}:{id}", all padded, so a prefix scan
// on a group returns its messages in creation order.
func messageKey(groupID domain.GroupID, at time.Time, id domain.MessageID) []byte {
	return []byte(fmt.Sprintf("%s%019d:%019d:%019d", messagePrefix, groupID, at.UnixNano(), id))
}

func messageGroupPrefix(groupID domain.GroupID) []byte {
	return []byte(fmt.Sprintf("%s%019d:", messagePrefix, groupID))
}

func messageIDKey(id domain.MessageID) []byte {
	return []byte(fmt.Sprintf("%s%019d", messageIDPrefix, id))
}

func userKey(email string) []byte {
	return []byte(userPrefix + strings.ToLower(email))
}

func userIDKey(id string) []byte {
	return []byte(userIDPrefix + id)
}
