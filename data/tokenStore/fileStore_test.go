package tokenStore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/KotFed0t/netbuy_report_bot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seoul(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)
	return loc
}

func TestFileStore_LoadMissingFile(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "token.json"), seoul(t))

	_, err := s.Load(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStore_SaveOverwritesSlot(t *testing.T) {
	loc := seoul(t)
	path := filepath.Join(t.TempDir(), "nested", "token.json")
	s := NewFileStore(path, loc)
	ctx := context.Background()

	first := model.Credential{Token: "first", ExpiresIn: 86400, ExpiresAt: time.Date(2026, 10, 19, 8, 0, 0, 0, loc)}
	second := model.Credential{Token: "second", ExpiresIn: 86400, ExpiresAt: time.Date(2026, 10, 20, 8, 0, 0, 0, loc)}

	require.NoError(t, s.Save(ctx, first))
	require.NoError(t, s.Save(ctx, second))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"access_token":"second","expires_in":86400,"access_token_token_expired":"2026-10-20 08:00:00"}`, string(raw))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", got.Token)
	assert.True(t, got.ExpiresAt.Equal(second.ExpiresAt))
}

func TestFileStore_CorruptedFileIsTreatedAsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewFileStore(path, seoul(t)).Load(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStore_BadExpiry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"access_token":"x","expires_in":1,"access_token_token_expired":"tomorrow"}`), 0o600))

	_, err := NewFileStore(path, seoul(t)).Load(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
