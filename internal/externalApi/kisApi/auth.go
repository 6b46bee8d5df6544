package kisApi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/KotFed0t/netbuy_report_bot/config"
	"github.com/KotFed0t/netbuy_report_bot/data/tokenStore"
	"github.com/KotFed0t/netbuy_report_bot/internal/externalApi"
	"github.com/KotFed0t/netbuy_report_bot/internal/model"
	"github.com/KotFed0t/netbuy_report_bot/internal/model/kisModel"
	"github.com/KotFed0t/netbuy_report_bot/utils"
	"github.com/go-resty/resty/v2"
)

const tokenPath = "/oauth2/tokenP"

type TokenStore interface {
	Load(ctx context.Context) (model.Credential, error)
	Save(ctx context.Context, cred model.Credential) error
}

// TokenProvider hands out the cached access token and issues a new one once it expires.
type TokenProvider struct {
	client *resty.Client
	kis    config.Kis
	store  TokenStore
	loc    *time.Location
	now    func() time.Time
}

func NewTokenProvider(cfg *config.Config, store TokenStore) *TokenProvider {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.Kis.UrlBase)
	return &TokenProvider{client: client, kis: cfg.Kis, store: store, loc: cfg.Location(), now: time.Now}
}

func (p *TokenProvider) GetCredential(ctx context.Context) (model.Credential, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TokenProvider.GetCredential"

	if err := p.kis.Check(); err != nil {
		slog.Error("kis credentials are not configured", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Credential{}, err
	}

	cred, err := p.store.Load(ctx)
	switch {
	case err == nil && cred.Valid(p.now()):
		return cred, nil
	case err == nil:
		slog.Info("cached token expired", slog.String("rqID", rqID), slog.String("op", op), slog.Time("expiresAt", cred.ExpiresAt))
	case !errors.Is(err, tokenStore.ErrNotFound):
		slog.Warn("can't load cached token", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	cred, err = p.issue(ctx)
	if err != nil {
		return model.Credential{}, err
	}

	if err = p.store.Save(ctx, cred); err != nil {
		slog.Error("can't persist token", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	return cred, nil
}

func (p *TokenProvider) issue(ctx context.Context) (model.Credential, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TokenProvider.issue"

	slog.Debug("issue token start", slog.String("rqID", rqID), slog.String("op", op))

	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("content-type", "application/json").
		SetBody(kisModel.TokenRequest{
			GrantType: "client_credentials",
			AppKey:    p.kis.AppKey,
			AppSecret: p.kis.AppSecret,
		}).
		Post(tokenPath)
	if err != nil {
		slog.Error("error while dialing token endpoint", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Credential{}, fmt.Errorf("%s: %w", op, err)
	}

	if resp.StatusCode() != http.StatusOK {
		authErr := &externalApi.AuthError{StatusCode: resp.StatusCode(), Message: resp.String()}
		var body kisModel.TokenResponse
		if json.Unmarshal(resp.Body(), &body) == nil && body.ErrorDescription != "" {
			authErr.Message = body.ErrorDescription
		}
		slog.Error("token endpoint refused", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", authErr.Error()))
		return model.Credential{}, authErr
	}

	var body kisModel.TokenResponse
	if err = json.Unmarshal(resp.Body(), &body); err != nil || body.AccessToken == "" {
		return model.Credential{}, &externalApi.AuthError{StatusCode: resp.StatusCode(), Message: "token missing in response"}
	}

	expiresAt, err := time.ParseInLocation(model.CredentialTimeLayout, body.AccessTokenExpired, p.loc)
	if err != nil {
		slog.Warn("can't parse token expiry, using expires_in", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		expiresAt = p.now().Add(time.Duration(body.ExpiresIn) * time.Second)
	}

	slog.Debug("issue token completed", slog.String("rqID", rqID), slog.String("op", op), slog.Time("expiresAt", expiresAt))

	return model.Credential{
		Token:     body.AccessToken,
		ExpiresIn: body.ExpiresIn,
		ExpiresAt: expiresAt,
	}, nil
}
