package types

type Tag struct {
	ID  int64  `db:"tag_id" json:"tag_id"`
	Tag string `db:"tag" json:"tag"`
}

// TagPair links an entity (NGO or opportunity) to a tag. Both pair tables are
// read into this shape; the entity column is aliased to entity_id.
type TagPair struct {
	EntityID int64 `db:"entity_id"`
	TagID    int64 `db:"tag_id"`
}
