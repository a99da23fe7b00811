package storage

import (
	"context"
	"log/slog"
	"time"

	config "github.com/feedbackbot/feedback-bot-server/internal/config"
	"github.com/feedbackbot/feedback-bot-server/internal/model"
	"github.com/feedbackbot/feedback-bot-server/internal/relay"
	storage_logger "github.com/feedbackbot/feedback-bot-server/internal/storage/storage_logger"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Storage owns the database handle and hands out transaction-scoped units of
// work. The gateway is bound at construction so every unit of work carries it.
type Storage struct {
	db      *gorm.DB
	gateway relay.Gateway
}

var _ relay.Beginner = (*Storage)(nil)

func New(config *config.Config, gateway relay.Gateway, logger *slog.Logger) (*Storage, error) {
	dialector, err := createDialector(&config.Database)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(
		dialector,
		&gorm.Config{
			NamingStrategy: schema.NamingStrategy{},
			Logger:         storage_logger.NewGormSlogLogger(logger),
			NowFunc:        func() time.Time { return time.Now().UTC() },
		})
	if err != nil {
		return nil, err
	}

	// Migrations
	const timeoutSeconds = 15 * 60
	ctx, cancel := context.WithTimeout(context.Background(), timeoutSeconds*time.Second)
	defer cancel()
	if err := db.WithContext(ctx).AutoMigrate(
		&model.TargetChat{},
		&model.Admin{},
		&model.ForwardedMessage{},
	); err != nil {
		return nil, err
	}

	return &Storage{db: db, gateway: gateway}, nil
}

// Begin opens a transaction and returns a unit of work bound to it. There is
// no in-process locking of entities: correctness under concurrent operations
// relies on the store's isolation level (read-committed or better), and the
// last committed transaction wins.
func (s *Storage) Begin(ctx context.Context) (relay.UnitOfWork, error) {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	return newUnitOfWork(tx, s.gateway), nil
}

// Close - close the database connection
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Status reports database reachability for the health endpoint.
func (s *Storage) Status() (string, error) {
	sqlDB, err := s.db.DB()
	if err != nil {
		return "unavailable", err
	}
	if err := sqlDB.Ping(); err != nil {
		return "unavailable", err
	}
	return "ok", nil
}

// TargetChats - get all target chats, newest first. Non-transactional read for
// the admin API.
func (s *Storage) TargetChats() ([]model.TargetChat, error) {
	var targetChats []model.TargetChat
	if err := s.db.Order("created_at DESC, chat_id DESC").Find(&targetChats).Error; err != nil {
		return nil, err
	}
	return targetChats, nil
}

// Admins - get all admins with their target chats. Non-transactional read for
// the admin API.
func (s *Storage) Admins() ([]model.Admin, error) {
	var admins []model.Admin
	if err := s.db.Preload("TargetChat").Find(&admins).Error; err != nil {
		return nil, err
	}
	return admins, nil
}
