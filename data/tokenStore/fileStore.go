package tokenStore

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/KotFed0t/netbuy_report_bot/internal/model"
	"github.com/KotFed0t/netbuy_report_bot/utils"
)

// FileStore keeps the credential in a single JSON file that is rewritten on every Save.
type FileStore struct {
	path string
	loc  *time.Location
}

func NewFileStore(path string, loc *time.Location) *FileStore {
	return &FileStore{path: path, loc: loc}
}

func (s *FileStore) Load(ctx context.Context) (model.Credential, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "FileStore.Load"

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.Credential{}, ErrNotFound
		}
		slog.Error("can't read token file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Credential{}, err
	}

	var r record
	if err = json.Unmarshal(data, &r); err != nil {
		slog.Warn("token file is corrupted", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Credential{}, ErrNotFound
	}

	return fromRecord(r, s.loc)
}

func (s *FileStore) Save(ctx context.Context, cred model.Credential) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "FileStore.Save"

	data, err := json.Marshal(toRecord(cred, s.loc))
	if err != nil {
		return err
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err = os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	if err = os.WriteFile(s.path, data, 0o600); err != nil {
		slog.Error("can't write token file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("token saved", slog.String("rqID", rqID), slog.String("op", op), slog.String("path", s.path))

	return nil
}
