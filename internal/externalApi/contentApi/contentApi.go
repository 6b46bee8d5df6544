package contentApi

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/KotFed0t/netbuy_report_bot/config"
	"github.com/KotFed0t/netbuy_report_bot/internal/model"
	"github.com/KotFed0t/netbuy_report_bot/utils"
	"github.com/go-resty/resty/v2"
)

const postsPath = "/api/posts"

// PostError is a refused post. Message is what the content service returned.
type PostError struct {
	StatusCode int
	Message    string
}

func (e *PostError) Error() string {
	return fmt.Sprintf("content api error: status %d: %s", e.StatusCode, e.Message)
}

type postResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ID      any    `json:"id"`
}

type ContentApi struct {
	client *resty.Client
}

func New(cfg *config.Config) *ContentApi {
	client := resty.New().
		SetBaseURL(cfg.ContentApi.Url).
		SetTimeout(cfg.API.Timeout).
		SetDebug(cfg.API.Debug)

	if cfg.ContentApi.Token != "" {
		client.SetAuthToken(cfg.ContentApi.Token)
	}

	return &ContentApi{client: client}
}

// CreatePost publishes post as multipart form data with every image attached under "images".
func (a *ContentApi) CreatePost(ctx context.Context, post model.Post) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "ContentApi.CreatePost"

	slog.Debug("CreatePost start", slog.String("rqID", rqID), slog.String("op", op), slog.String("title", post.Title))

	req := a.client.R().
		SetContext(ctx).
		SetMultipartFormData(map[string]string{
			"title":    post.Title,
			"content":  post.Content,
			"category": post.Category,
			"writer":   post.Writer,
		})

	for _, path := range post.ImagePaths {
		req.SetFile("images", path)
	}

	var res postResponse
	resp, err := req.SetResult(&res).SetError(&res).Post(postsPath)
	if err != nil {
		slog.Error("failed on posting content", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return fmt.Errorf("content api %s: %w", postsPath, err)
	}

	if resp.IsError() || (!res.Success && res.Message != "") {
		msg := res.Message
		if msg == "" {
			msg = resp.String()
		}
		slog.Error("content api refused post", slog.String("rqID", rqID), slog.String("op", op), slog.Int("status", resp.StatusCode()), slog.String("message", msg))
		return &PostError{StatusCode: resp.StatusCode(), Message: msg}
	}

	slog.Info(
		"post created",
		slog.String("rqID", rqID),
		slog.String("op", op),
		slog.Any("id", res.ID),
		slog.Int("images", len(post.ImagePaths)),
		slog.String("firstImage", firstBase(post.ImagePaths)),
	)

	return nil
}

func firstBase(paths []string) string {
	if len(paths) == 0 {
		return ""
	}
	return filepath.Base(paths[0])
}
