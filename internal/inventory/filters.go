package inventory

import "time"

// ItemFilter selects items by a secondary criterion. The set is closed:
// only the types in this file implement it.
type ItemFilter interface {
	itemFilter()
}

// ItemsInContainer matches items whose parent container is ContainerID
type ItemsInContainer struct {
	ContainerID string
}

// ItemsWithTag matches items carrying a tag with the given key
type ItemsWithTag struct {
	Key string
}

// ItemsCheckedOut matches items that are currently checked out
type ItemsCheckedOut struct{}

// ItemsCheckedOutBefore matches items checked out earlier than Time
type ItemsCheckedOutBefore struct {
	Time time.Time
}

// ItemsByID matches the listed identifiers. An empty list matches nothing.
type ItemsByID struct {
	IDs []string
}

// ItemsNotDestroyed matches items that have not been destroyed
type ItemsNotDestroyed struct{}

// ItemsContainers matches items that can hold other items
type ItemsContainers struct{}

// ItemsDescribedAs matches items whose description contains Text
type ItemsDescribedAs struct {
	Text string
}

func (ItemsInContainer) itemFilter()      {}
func (ItemsWithTag) itemFilter()          {}
func (ItemsCheckedOut) itemFilter()       {}
func (ItemsCheckedOutBefore) itemFilter() {}
func (ItemsByID) itemFilter()             {}
func (ItemsNotDestroyed) itemFilter()     {}
func (ItemsContainers) itemFilter()       {}
func (ItemsDescribedAs) itemFilter()      {}

// TagFilter selects tag rows. The set is closed.
type TagFilter interface {
	tagFilter()
}

// TagsOfItem matches every tag owned by ItemID
type TagsOfItem struct {
	ItemID string
}

// TagsWithKey matches tags with the given key across all items
type TagsWithKey struct {
	Key string
}

func (TagsOfItem) tagFilter()  {}
func (TagsWithKey) tagFilter() {}
