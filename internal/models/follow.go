package models

import "time"

// Follow is a directed edge: UserID follows FollowedID.
// The primary key is a composite of (UserID, FollowedID) so a pair can only have one edge.
type Follow struct {
	UserID     uint `gorm:"primaryKey;autoIncrement:false"`
	FollowedID uint `gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt  time.Time

	User     User `gorm:"foreignKey:UserID;references:ID"`
	Followed User `gorm:"foreignKey:FollowedID;references:ID"`
}
