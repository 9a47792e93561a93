package entities

// Subscription is a follower (UserID) -> followed (AuthorID) edge.
type Subscription struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	UserID   uint `gorm:"not null;uniqueIndex:idx_subscription_user_author;check:chk_subscription_no_self_follow,user_id <> author_id" json:"user_id"`
	AuthorID uint `gorm:"not null;uniqueIndex:idx_subscription_user_author;index" json:"author_id"`

	User   *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Author *User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	Timestamp
}
