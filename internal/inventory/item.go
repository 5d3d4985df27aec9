package inventory

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/eleven-am/inventory/internal/orm"
)

const ItemsTable = "items"

// ItemColumns lists the items table in physical column order
var ItemColumns = struct {
	ID              orm.StringColumn
	Description     orm.StringColumn
	IsContainer     orm.BoolColumn
	CheckedOut      orm.TimeColumn
	Destroyed       orm.TimeColumn
	ParentContainer orm.NullStringColumn
}{
	ID:              orm.StringColumn{Column: orm.Column[string]{Name: "id"}},
	Description:     orm.StringColumn{Column: orm.Column[string]{Name: "description"}},
	IsContainer:     orm.BoolColumn{Column: orm.Column[bool]{Name: "is_container"}},
	CheckedOut:      orm.TimeColumn{Column: orm.Column[*time.Time]{Name: "checked_out"}},
	Destroyed:       orm.TimeColumn{Column: orm.Column[*time.Time]{Name: "destroyed"}},
	ParentContainer: orm.NullStringColumn{Column: orm.Column[*string]{Name: "parent_container"}},
}

// Item is a tracked physical thing. Containers can hold other items through
// ParentContainer. Tags live in memory until the item is saved.
type Item struct {
	id              string
	Description     string
	IsContainer     bool
	CheckedOut      *time.Time
	Destroyed       *time.Time
	ParentContainer *string

	tags map[string]string
}

// NewItem creates an item with a fresh identifier and no tags
func NewItem(description string, isContainer bool, parentContainer *string) *Item {
	return &Item{
		id:              uuid.NewString(),
		Description:     description,
		IsContainer:     isContainer,
		ParentContainer: parentContainer,
		tags:            make(map[string]string),
	}
}

// ID returns the identifier assigned at construction. It never changes.
func (i *Item) ID() string {
	return i.id
}

// SetTag sets key to value, replacing any previous value
func (i *Item) SetTag(key, value string) {
	if i.tags == nil {
		i.tags = make(map[string]string)
	}
	i.tags[key] = value
}

// Tag returns the value stored under key
func (i *Item) Tag(key string) (string, bool) {
	v, ok := i.tags[key]
	return v, ok
}

// Tags returns a copy of the tag mapping
func (i *Item) Tags() map[string]string {
	out := make(map[string]string, len(i.tags))
	for k, v := range i.tags {
		out[k] = v
	}
	return out
}

// CheckOut marks the item as taken at the given time
func (i *Item) CheckOut(at time.Time) {
	at = at.UTC()
	i.CheckedOut = &at
}

// CheckIn clears the checked-out mark
func (i *Item) CheckIn() {
	i.CheckedOut = nil
}

// Destroy marks the item as gone for good
func (i *Item) Destroy(at time.Time) {
	at = at.UTC()
	i.Destroyed = &at
}

// IsCheckedOut reports whether the item is currently out
func (i *Item) IsCheckedOut() bool {
	return i.CheckedOut != nil
}

func (i *Item) MarshalJSON() ([]byte, error) {
	tags := i.tags
	if tags == nil {
		tags = map[string]string{}
	}
	return json.Marshal(struct {
		ID              string            `json:"id"`
		Description     string            `json:"description"`
		IsContainer     bool              `json:"is_container"`
		CheckedOut      *time.Time        `json:"checked_out"`
		Destroyed       *time.Time        `json:"destroyed"`
		ParentContainer *string           `json:"parent_container"`
		Tags            map[string]string `json:"tags"`
	}{i.id, i.Description, i.IsContainer, i.CheckedOut, i.Destroyed, i.ParentContainer, tags})
}

func (i *Item) TableName() string {
	return ItemsTable
}

// DecodeRow reads id, description, is_container, checked_out, destroyed,
// parent_container. Tags are filled in afterwards by AfterLoad.
func (i *Item) DecodeRow(row orm.RowScanner) error {
	var (
		description sql.NullString
		checkedOut  sql.NullTime
		destroyed   sql.NullTime
		parent      sql.NullString
	)

	if err := row.Scan(&i.id, &description, &i.IsContainer, &checkedOut, &destroyed, &parent); err != nil {
		return err
	}

	i.Description = description.String
	i.CheckedOut = nullToTimePtr(checkedOut)
	i.Destroyed = nullToTimePtr(destroyed)
	if parent.Valid {
		p := parent.String
		i.ParentContainer = &p
	}
	i.tags = make(map[string]string)

	return nil
}

func (i *Item) KeyPredicate(id string) orm.Condition {
	return ItemColumns.ID.Eq(id)
}

func (i *Item) FilterPredicate(filter ItemFilter) (orm.Condition, error) {
	switch f := filter.(type) {
	case ItemsInContainer:
		return ItemColumns.ParentContainer.Is(f.ContainerID), nil
	case ItemsWithTag:
		return orm.Expr(fmt.Sprintf("%s IN (SELECT %s FROM %s WHERE %s = ?)",
			ItemColumns.ID, TagColumns.ItemID, TagsTable, TagColumns.Key), f.Key), nil
	case ItemsCheckedOut:
		return ItemColumns.CheckedOut.IsNotNull(), nil
	case ItemsCheckedOutBefore:
		return ItemColumns.CheckedOut.Before(f.Time.UTC()), nil
	case ItemsByID:
		return ItemColumns.ID.In(f.IDs...), nil
	case ItemsNotDestroyed:
		return ItemColumns.Destroyed.IsNull(), nil
	case ItemsContainers:
		return ItemColumns.IsContainer.IsTrue(), nil
	case ItemsDescribedAs:
		return ItemColumns.Description.Contains(f.Text), nil
	default:
		return orm.Condition{}, fmt.Errorf("%w: %T", orm.ErrUnknownFilter, filter)
	}
}

func (i *Item) KeyColumns() []orm.Assignment {
	return []orm.Assignment{
		ItemColumns.ID.Set(i.id),
	}
}

func (i *Item) DataColumns() []orm.Assignment {
	return []orm.Assignment{
		ItemColumns.Description.Set(i.Description),
		ItemColumns.IsContainer.Set(i.IsContainer),
		ItemColumns.CheckedOut.Set(i.CheckedOut),
		ItemColumns.Destroyed.Set(i.Destroyed),
		ItemColumns.ParentContainer.Set(i.ParentContainer),
	}
}

// AfterLoad fills the tag mapping from tag_associations
func (i *Item) AfterLoad(ctx context.Context, conn *orm.Conn) error {
	tags, err := orm.LoadBy[Tag, TagFilter](ctx, conn, TagsOfItem{ItemID: i.id})
	if err != nil {
		return err
	}

	for _, t := range tags {
		i.SetTag(t.Key, t.Value)
	}
	return nil
}

// AfterSave writes one tag row per entry, in key order
func (i *Item) AfterSave(ctx context.Context, conn *orm.Conn) error {
	keys := make([]string, 0, len(i.tags))
	for k := range i.tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		tag := &Tag{ItemID: i.id, Key: k, Value: i.tags[k]}
		if err := orm.Upsert(ctx, conn, tag); err != nil {
			return err
		}
	}
	return nil
}

func nullToTimePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
