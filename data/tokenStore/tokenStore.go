package tokenStore

import (
	"errors"
	"fmt"
	"time"

	"github.com/KotFed0t/netbuy_report_bot/internal/model"
)

var ErrNotFound = errors.New("error token not found")

// record is the persisted form of a credential, shared by every store.
type record struct {
	AccessToken        string `json:"access_token"`
	ExpiresIn          int    `json:"expires_in"`
	AccessTokenExpired string `json:"access_token_token_expired"`
}

func toRecord(cred model.Credential, loc *time.Location) record {
	return record{
		AccessToken:        cred.Token,
		ExpiresIn:          cred.ExpiresIn,
		AccessTokenExpired: cred.ExpiresAt.In(loc).Format(model.CredentialTimeLayout),
	}
}

func fromRecord(r record, loc *time.Location) (model.Credential, error) {
	if r.AccessToken == "" {
		return model.Credential{}, ErrNotFound
	}

	expiresAt, err := time.ParseInLocation(model.CredentialTimeLayout, r.AccessTokenExpired, loc)
	if err != nil {
		return model.Credential{}, fmt.Errorf("parse access_token_token_expired %q: %w", r.AccessTokenExpired, err)
	}

	return model.Credential{
		Token:     r.AccessToken,
		ExpiresIn: r.ExpiresIn,
		ExpiresAt: expiresAt,
	}, nil
}
