package cache

import (
	"fmt"
	"strings"
)

// Key identifies one cached entity.
type Key string

// Fixed keys.
const (
	SelfKey        Key = "self"
	CurrentPageKey Key = "ranking/current"
)

// ItemKey is the key of an item snapshot.
func ItemKey(itemID string) Key { return Key("item/" + itemID) }

// PageKey is the key of one ranking page.
func PageKey(pageNumber, pageSize int) Key {
	return Key(fmt.Sprintf("ranking/%d/%d", pageNumber, pageSize))
}

// UserKey is the key of another user's standing.
func UserKey(userID string) Key { return Key("user/" + userID) }

// IsItem reports whether k is an item key.
func (k Key) IsItem() bool { return strings.HasPrefix(string(k), "item/") }

func (k Key) String() string { return string(k) }
