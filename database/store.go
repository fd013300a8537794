package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/Haibread/goalhorn/models"
	"github.com/Haibread/goalhorn/subscriptions"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store keeps the discordguilds table. It is safe for concurrent use, every
// call borrows one pooled connection for a single statement.
type Store struct {
	db *gorm.DB
}

var _ subscriptions.Store = (*Store)(nil)

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) InsertGuild(ctx context.Context, guildID string) error {
	err := s.db.WithContext(ctx).Create(&models.GuildSubscription{GuildID: guildID}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", subscriptions.ErrGuildExists, err)
	}
	return err
}

func (s *Store) DeleteGuild(ctx context.Context, guildID string) error {
	return s.db.WithContext(ctx).
		Where("guild_id = ?", guildID).
		Delete(&models.GuildSubscription{}).Error
}

func (s *Store) SetFollowedTeam(ctx context.Context, guildID, team string) (int64, error) {
	res := s.db.WithContext(ctx).
		Model(&models.GuildSubscription{}).
		Where("guild_id = ?", guildID).
		Update("followed_teams", team)
	return res.RowsAffected, res.Error
}

func (s *Store) FollowedTeam(ctx context.Context, guildID string) (string, bool, error) {
	var guild models.GuildSubscription
	err := s.db.WithContext(ctx).Where("guild_id = ?", guildID).First(&guild).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, subscriptions.ErrGuildNotRegistered
	}
	if err != nil {
		return "", false, err
	}
	return guild.FollowedTeams.String, guild.FollowedTeams.Valid, nil
}

func (s *Store) GuildIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&models.GuildSubscription{}).Pluck("guild_id", &ids).Error
	return ids, err
}

func (s *Store) EnsureGuild(ctx context.Context, guildID string) (bool, error) {
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.GuildSubscription{GuildID: guildID})
	return res.RowsAffected == 1, res.Error
}
