package inventory

import (
	"fmt"

	"github.com/eleven-am/inventory/internal/orm"
)

const TagsTable = "tag_associations"

// TagColumns lists the tag_associations table in physical column order
var TagColumns = struct {
	ItemID orm.StringColumn
	Key    orm.StringColumn
	Value  orm.StringColumn
}{
	ItemID: orm.StringColumn{Column: orm.Column[string]{Name: "item_id"}},
	Key:    orm.StringColumn{Column: orm.Column[string]{Name: "key"}},
	Value:  orm.StringColumn{Column: orm.Column[string]{Name: "value"}},
}

// Tag is one key/value pair attached to an item. (ItemID, Key) is unique.
type Tag struct {
	ItemID string
	Key    string
	Value  string
}

// TagKey identifies a single tag row
type TagKey struct {
	ItemID string
	Key    string
}

func (t *Tag) TableName() string {
	return TagsTable
}

func (t *Tag) DecodeRow(row orm.RowScanner) error {
	return row.Scan(&t.ItemID, &t.Key, &t.Value)
}

func (t *Tag) KeyPredicate(key TagKey) orm.Condition {
	return orm.And(
		TagColumns.ItemID.Eq(key.ItemID),
		TagColumns.Key.Eq(key.Key),
	)
}

func (t *Tag) FilterPredicate(filter TagFilter) (orm.Condition, error) {
	switch f := filter.(type) {
	case TagsOfItem:
		return TagColumns.ItemID.Eq(f.ItemID), nil
	case TagsWithKey:
		return TagColumns.Key.Eq(f.Key), nil
	default:
		return orm.Condition{}, fmt.Errorf("%w: %T", orm.ErrUnknownFilter, filter)
	}
}

func (t *Tag) KeyColumns() []orm.Assignment {
	return []orm.Assignment{
		TagColumns.ItemID.Set(t.ItemID),
		TagColumns.Key.Set(t.Key),
	}
}

func (t *Tag) DataColumns() []orm.Assignment {
	return []orm.Assignment{
		TagColumns.Value.Set(t.Value),
	}
}
