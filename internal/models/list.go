package models

import (
	"time"

	"github.com/google/uuid"
)

// List is a to-do list. A list may be unowned (created anonymously); an owned
// list only accepts items from its owner or the users it is shared with.
type List struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerEmail *string   `gorm:"type:text;index"`
	Owner      *User     `gorm:"foreignKey:OwnerEmail;references:Email;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	SharedWith []User    `gorm:"many2many:list_shares"`
	Items      []Item    `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
}

func (List) TableName() string { return "lists" }

// Name is the derived display name of the list: the text of its earliest
// item. A list with no items has no name and yields the empty string.
// Items must be loaded in insertion order.
func (l List) Name() string {
	if len(l.Items) == 0 {
		return ""
	}
	return l.Items[0].Text
}

// Item is a single to-do entry. Text is unique within its list; the composite
// unique index makes the database arbitrate racing duplicate inserts. Seq is
// a serial assigned on insert and defines the display order.
type Item struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ListID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_items_list_text"`
	Text      string    `gorm:"type:text;not null;uniqueIndex:idx_items_list_text"`
	Seq       int64     `gorm:"autoIncrement;uniqueIndex"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
}

func (Item) TableName() string { return "items" }
