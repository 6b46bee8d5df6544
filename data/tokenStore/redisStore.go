package tokenStore

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/KotFed0t/netbuy_report_bot/internal/model"
	"github.com/KotFed0t/netbuy_report_bot/utils"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the credential under one key; the key expires together with the token.
type RedisStore struct {
	redis *redis.Client
	key   string
	loc   *time.Location
	now   func() time.Time
}

func NewRedisStore(redisClient *redis.Client, key string, loc *time.Location) *RedisStore {
	return &RedisStore{redis: redisClient, key: key, loc: loc, now: time.Now}
}

func (r *RedisStore) Load(ctx context.Context) (model.Credential, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "RedisStore.Load"

	res, err := r.redis.Get(ctx, r.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.Credential{}, ErrNotFound
		}
		slog.Error("failed on redis.Get", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()), slog.String("key", r.key))
		return model.Credential{}, err
	}

	var rec record
	if err = json.Unmarshal([]byte(res), &rec); err != nil {
		slog.Warn("can't unmarshall token", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Credential{}, ErrNotFound
	}

	return fromRecord(rec, r.loc)
}

func (r *RedisStore) Save(ctx context.Context, cred model.Credential) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "RedisStore.Save"

	data, err := json.Marshal(toRecord(cred, r.loc))
	if err != nil {
		return err
	}

	ttl := cred.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return errors.New("credential already expired")
	}

	if err = r.redis.Set(ctx, r.key, data, ttl).Err(); err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return nil
}
