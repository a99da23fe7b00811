package storage

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	config "github.com/feedbackbot/feedback-bot-server/internal/config"
	errs "github.com/feedbackbot/feedback-bot-server/internal/errors"
	"github.com/feedbackbot/feedback-bot-server/internal/model"
	"github.com/feedbackbot/feedback-bot-server/internal/relay"
)

const testAdminToken = "super-secret-token"

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Driver:     "sqlite3",
			Connection: filepath.Join(t.TempDir(), "relay.db"),
		},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := New(cfg, relay.NewGatewayFake(), logger)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})

	return db
}

func begin(t *testing.T, db *Storage) relay.UnitOfWork {
	t.Helper()

	uow, err := db.Begin(context.Background())
	require.NoError(t, err)

	return uow
}

func TestAdminRoundTrip(t *testing.T) {
	db := newTestStorage(t)

	admin := model.AuthenticateAdmin(42, 13, testAdminToken, testAdminToken)
	require.NotNil(t, admin)

	uow := begin(t, db)
	require.NoError(t, uow.Admins().Add(admin))
	require.NoError(t, uow.Commit())

	uow = begin(t, db)
	defer uow.Rollback()

	loaded, err := uow.Admins().Get(42)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Equal(t, model.UserID(42), loaded.UserID)
	require.Equal(t, model.ChatID(13), loaded.TargetChatID)

	// Target chat joined on read
	require.NotNil(t, loaded.TargetChat)
	require.Equal(t, model.ChatID(13), loaded.TargetChat.ChatID)

	// The admin's own chat landed in the target chat table as its own row
	targetChat, err := uow.TargetChats().Get(13)
	require.NoError(t, err)
	require.NotNil(t, targetChat)
}

func TestAdminAddIsUpsert(t *testing.T) {
	db := newTestStorage(t)

	uow := begin(t, db)
	require.NoError(t, uow.Admins().Add(model.AuthenticateAdmin(42, 13, testAdminToken, testAdminToken)))
	require.NoError(t, uow.Admins().Add(model.AuthenticateAdmin(42, 13, testAdminToken, testAdminToken)))
	require.NoError(t, uow.Commit())

	uow = begin(t, db)
	defer uow.Rollback()

	admins, err := uow.Admins().GetAll()
	require.NoError(t, err)
	require.Len(t, admins, 1)
}

func TestGetMissingReturnsNilWithoutError(t *testing.T) {
	db := newTestStorage(t)

	uow := begin(t, db)
	defer uow.Rollback()

	admin, err := uow.Admins().Get(42)
	require.NoError(t, err)
	require.Nil(t, admin)

	targetChat, err := uow.TargetChats().Get(13)
	require.NoError(t, err)
	require.Nil(t, targetChat)

	forwardedMessage, err := uow.ForwardedMessages().Get(42, 13)
	require.NoError(t, err)
	require.Nil(t, forwardedMessage)

	latest, err := uow.TargetChats().GetLatest()
	require.NoError(t, err)
	require.Nil(t, latest)
}

func TestGetLatestSelectsByCreatedAt(t *testing.T) {
	db := newTestStorage(t)

	older := time.Date(2021, 8, 27, 0, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)

	uow := begin(t, db)
	// Insertion order deliberately reversed relative to creation time
	require.NoError(t, uow.TargetChats().Add(&model.TargetChat{ChatID: 200, CreatedAt: newer}))
	require.NoError(t, uow.TargetChats().Add(&model.TargetChat{ChatID: 100, CreatedAt: older}))
	require.NoError(t, uow.Commit())

	uow = begin(t, db)
	defer uow.Rollback()

	latest, err := uow.TargetChats().GetLatest()
	require.NoError(t, err)
	require.NotNil(t, latest)
	require.Equal(t, model.ChatID(200), latest.ChatID)
}

func TestGetLatestTieBreaksOnChatID(t *testing.T) {
	db := newTestStorage(t)

	createdAt := time.Date(2021, 8, 27, 0, 0, 0, 0, time.UTC)

	uow := begin(t, db)
	require.NoError(t, uow.TargetChats().Add(&model.TargetChat{ChatID: 7, CreatedAt: createdAt}))
	require.NoError(t, uow.TargetChats().Add(&model.TargetChat{ChatID: 9, CreatedAt: createdAt}))
	require.NoError(t, uow.TargetChats().Add(&model.TargetChat{ChatID: 8, CreatedAt: createdAt}))
	require.NoError(t, uow.Commit())

	uow = begin(t, db)
	defer uow.Rollback()

	latest, err := uow.TargetChats().GetLatest()
	require.NoError(t, err)
	require.Equal(t, model.ChatID(9), latest.ChatID)
}

func TestRemoveTargetChatIsIdempotent(t *testing.T) {
	db := newTestStorage(t)

	uow := begin(t, db)
	require.NoError(t, uow.TargetChats().Add(model.NewTargetChat(13)))
	require.NoError(t, uow.Commit())

	uow = begin(t, db)
	removed, err := uow.TargetChats().Remove(13)
	require.NoError(t, err)
	require.NotNil(t, removed)
	require.Equal(t, model.ChatID(13), removed.ChatID)

	// Second remove inside the same transaction finds nothing
	removed, err = uow.TargetChats().Remove(13)
	require.NoError(t, err)
	require.Nil(t, removed)
	require.NoError(t, uow.Commit())

	uow = begin(t, db)
	defer uow.Rollback()

	targetChat, err := uow.TargetChats().Get(13)
	require.NoError(t, err)
	require.Nil(t, targetChat)
}

func TestForwardedMessageDuplicateKeyKeepsFirstRecord(t *testing.T) {
	db := newTestStorage(t)

	uow := begin(t, db)
	require.NoError(t, uow.ForwardedMessages().Add(model.NewForwardedMessage(42, 13, 99)))
	require.NoError(t, uow.Commit())

	uow = begin(t, db)
	require.NoError(t, uow.ForwardedMessages().Add(model.NewForwardedMessage(42, 13, 7)))
	require.NoError(t, uow.Commit())

	uow = begin(t, db)
	defer uow.Rollback()

	forwardedMessage, err := uow.ForwardedMessages().Get(42, 13)
	require.NoError(t, err)
	require.NotNil(t, forwardedMessage)
	require.Equal(t, model.ChatID(99), forwardedMessage.OriginChatID)
}

func TestForwardedMessageIDUniquePerTargetChat(t *testing.T) {
	db := newTestStorage(t)

	uow := begin(t, db)
	require.NoError(t, uow.ForwardedMessages().Add(model.NewForwardedMessage(42, 13, 99)))
	require.NoError(t, uow.ForwardedMessages().Add(model.NewForwardedMessage(42, 14, 77)))
	require.NoError(t, uow.Commit())

	uow = begin(t, db)
	defer uow.Rollback()

	first, err := uow.ForwardedMessages().Get(42, 13)
	require.NoError(t, err)
	require.NotNil(t, first)
	require.Equal(t, model.ChatID(99), first.OriginChatID)

	second, err := uow.ForwardedMessages().Get(42, 14)
	require.NoError(t, err)
	require.NotNil(t, second)
	require.Equal(t, model.ChatID(77), second.OriginChatID)
}

func TestRollbackDiscardsWrites(t *testing.T) {
	db := newTestStorage(t)

	uow := begin(t, db)
	require.NoError(t, uow.TargetChats().Add(model.NewTargetChat(13)))
	require.NoError(t, uow.Rollback())

	uow = begin(t, db)
	defer uow.Rollback()

	targetChat, err := uow.TargetChats().Get(13)
	require.NoError(t, err)
	require.Nil(t, targetChat)
}

func TestCommitFailureIsWrappedAndDiscardsWrites(t *testing.T) {
	db := newTestStorage(t)

	uow := begin(t, db)
	require.NoError(t, uow.TargetChats().Add(model.NewTargetChat(13)))

	// Terminate the underlying transaction behind the unit of work's back,
	// so its own commit is rejected by the store
	require.NoError(t, uow.(*UnitOfWork).tx.Rollback().Error)

	err := uow.Commit()
	require.ErrorIs(t, err, errs.ErrorCommitFailed)

	// A second commit attempt stays a no-op
	require.NoError(t, uow.Commit())

	uow = begin(t, db)
	defer uow.Rollback()

	targetChat, err := uow.TargetChats().Get(13)
	require.NoError(t, err)
	require.Nil(t, targetChat)
}

func TestCommitAndRollbackAreIdempotent(t *testing.T) {
	db := newTestStorage(t)

	uow := begin(t, db)
	require.NoError(t, uow.TargetChats().Add(model.NewTargetChat(13)))
	require.NoError(t, uow.Commit())
	require.NoError(t, uow.Commit())
	require.NoError(t, uow.Rollback())

	// The commit stuck despite the late rollback call
	uow = begin(t, db)
	defer uow.Rollback()

	targetChat, err := uow.TargetChats().Get(13)
	require.NoError(t, err)
	require.NotNil(t, targetChat)
}

func TestStorageReadHelpers(t *testing.T) {
	db := newTestStorage(t)

	older := time.Date(2021, 8, 27, 0, 0, 0, 0, time.UTC)

	uow := begin(t, db)
	require.NoError(t, uow.TargetChats().Add(&model.TargetChat{ChatID: 100, CreatedAt: older}))
	require.NoError(t, uow.TargetChats().Add(&model.TargetChat{ChatID: 200, CreatedAt: older.Add(time.Hour)}))
	require.NoError(t, uow.Admins().Add(model.AuthenticateAdmin(42, 13, testAdminToken, testAdminToken)))
	require.NoError(t, uow.Commit())

	targetChats, err := db.TargetChats()
	require.NoError(t, err)
	require.Len(t, targetChats, 3) // the admin's own chat counts as a target

	admins, err := db.Admins()
	require.NoError(t, err)
	require.Len(t, admins, 1)
	require.NotNil(t, admins[0].TargetChat)

	status, err := db.Status()
	require.NoError(t, err)
	require.Equal(t, "ok", status)
}
