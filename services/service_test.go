// File: /services/service_test.go
package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"wavelink-api/models"
	"wavelink-api/realtime"
	"wavelink-api/repositories"
)

// fakeAssets is an in-memory AssetStore recording every store and
// delete so cascades can be asserted.
type fakeAssets struct {
	seq     int
	stored  []string
	deleted []string
}

func (f *fakeAssets) Store(ctx context.Context, dataURL string) (string, error) {
	f.seq++
	url := fmt.Sprintf("https://assets.test/chat/object-%d.png", f.seq)
	f.stored = append(f.stored, url)
	return url, nil
}

func (f *fakeAssets) Delete(ctx context.Context, assetURL string) error {
	f.deleted = append(f.deleted, assetURL)
	return nil
}

// fakeWire is a recording connection for relay sessions.
type fakeWire struct {
	written []realtime.Envelope
}

func (f *fakeWire) WriteJSON(v interface{}) error {
	f.written = append(f.written, v.(realtime.Envelope))
	return nil
}

func (f *fakeWire) Close() error { return nil }

func (f *fakeWire) events() []string {
	names := make([]string, len(f.written))
	for i, env := range f.written {
		names[i] = env.Event
	}
	return names
}

type fixture struct {
	users       *repositories.UserRepository
	messageRepo *repositories.MessageRepository
	messages    *MessageService
	friends     *FriendService
	relay       *realtime.Relay
	assets      *fakeAssets
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Message{}))

	users := repositories.NewUserRepository(db)
	messageRepo := repositories.NewMessageRepository(db)

	relay := realtime.NewRelay(realtime.NewPresence())
	assets := &fakeAssets{}
	messages := NewMessageService(messageRepo, users, assets, relay)
	friends := NewFriendService(users, messages, relay)

	return &fixture{
		users:       users,
		messageRepo: messageRepo,
		messages:    messages,
		friends:     friends,
		relay:       relay,
		assets:      assets,
	}
}

// addUser creates a stored user with the given relationship sets.
func (f *fixture) addUser(t *testing.T, id string) {
	t.Helper()
	require.NoError(t, f.users.Create(&models.User{
		ID:             id,
		FullName:       "User " + id,
		Email:          id + "@example.com",
		Password:       "hashed",
		Friends:        models.StringSet{},
		FriendRequests: models.StringSet{},
		SentRequests:   models.StringSet{},
	}))
}

// goOnline attaches a recording session for the user.
func (f *fixture) goOnline(userID string) *fakeWire {
	conn := &fakeWire{}
	f.relay.Presence().Register(userID, realtime.NewSession(userID, conn))
	return conn
}

func (f *fixture) mustUser(t *testing.T, id string) *models.User {
	t.Helper()
	user, err := f.users.FindByID(id)
	require.NoError(t, err)
	return user
}
