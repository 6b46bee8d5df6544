package kisApi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/KotFed0t/netbuy_report_bot/config"
	"github.com/KotFed0t/netbuy_report_bot/internal/externalApi"
	"github.com/KotFed0t/netbuy_report_bot/internal/model"
	"github.com/KotFed0t/netbuy_report_bot/internal/model/kisModel"
	"github.com/KotFed0t/netbuy_report_bot/utils"
	"github.com/go-resty/resty/v2"
)

const (
	successCode = "0"
	dateLayout  = "20060102"
)

type CredentialProvider interface {
	GetCredential(ctx context.Context) (model.Credential, error)
}

type statusHolder interface {
	Status() kisModel.Header
}

type KisApi struct {
	client *resty.Client
	kis    config.Kis
	tokens CredentialProvider
	loc    *time.Location
}

func New(cfg *config.Config, tokens CredentialProvider) *KisApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.Kis.UrlBase)
	return &KisApi{client: client, kis: cfg.Kis, tokens: tokens, loc: cfg.Location()}
}

// get performs one authorized quotation request and decodes it into out.
// A body whose rt_cd is not "0" becomes an *externalApi.ApiError carrying msg_cd and msg1.
func (a *KisApi) get(ctx context.Context, op, path, trID string, params map[string]string, out statusHolder) error {
	rqID := utils.GetRequestIDFromCtx(ctx)

	cred, err := a.tokens.GetCredential(ctx)
	if err != nil {
		return err
	}

	slog.Debug("start "+op+" request", slog.String("rqID", rqID), slog.String("path", path))

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeaders(map[string]string{
			"Content-Type":  "application/json; charset=utf-8",
			"authorization": "Bearer " + cred.Token,
			"appkey":        a.kis.AppKey,
			"appsecret":     a.kis.AppSecret,
			"tr_id":         trID,
			"custtype":      "P",
		}).
		SetQueryParams(params).
		Get(path)
	if err != nil {
		slog.Error("error while dialing KisApi", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = json.Unmarshal(resp.Body(), out); err != nil {
		if resp.IsError() {
			return &externalApi.ApiError{Path: path, Code: strconv.Itoa(resp.StatusCode()), Message: resp.Status()}
		}
		slog.Error("can't unmarshall KisApi response", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return fmt.Errorf("%s: decode response: %w", op, err)
	}

	status := out.Status()
	if status.RtCd != successCode {
		slog.Error(
			"KisApi returned non-success status",
			slog.String("rqID", rqID),
			slog.String("op", op),
			slog.String("rt_cd", status.RtCd),
			slog.String("msg_cd", status.MsgCd),
			slog.String("msg1", status.Msg1),
		)
		code := status.MsgCd
		if code == "" {
			code = strconv.Itoa(resp.StatusCode())
		}
		return &externalApi.ApiError{Path: path, Code: code, Message: status.Msg1}
	}

	slog.Debug(op+" request complete", slog.String("rqID", rqID))

	return nil
}
