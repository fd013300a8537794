package models

import (
	"database/sql"
	"time"
)

// GuildSubscription is the per-guild row. FollowedTeams holds a single
// canonical team name; a second follow overwrites the first.
type GuildSubscription struct {
	GuildID       string         `gorm:"primaryKey;size:32" json:"guild_id"`
	FollowedTeams sql.NullString `gorm:"column:followed_teams;size:64" json:"followed_teams"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

func (GuildSubscription) TableName() string {
	return "discordguilds"
}
