package googleDriveApi

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/KotFed0t/netbuy_report_bot/config"
	"github.com/KotFed0t/netbuy_report_bot/utils"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const downloadLinkTemplate = "https://drive.google.com/file/d/%s/view"

type GoogleDriveApi struct {
	srv      *drive.Service
	folderID string
	// only files whose name starts with prefix are cleaned up
	prefix  string
	fileTTL time.Duration
	now     func() time.Time
}

func New(ctx context.Context, cfg *config.Config, opts ...option.ClientOption) (*GoogleDriveApi, error) {
	if len(opts) == 0 {
		opts = []option.ClientOption{option.WithCredentialsFile(cfg.GoogleDrive.CredentialsFile)}
	}

	srv, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("drive.NewService: %w", err)
	}

	return &GoogleDriveApi{
		srv:      srv,
		folderID: cfg.GoogleDrive.FolderID,
		prefix:   cfg.Report.Name,
		fileTTL:  cfg.GoogleDrive.FileTTL,
		now:      time.Now,
	}, nil
}

// UploadFile stores the file, shares it for reading by link and returns the link.
func (a *GoogleDriveApi) UploadFile(ctx context.Context, reader io.Reader, filename string) (downloadLink string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "GoogleDriveApi.UploadFile"

	slog.Debug("UploadFile start", slog.String("rqID", rqID), slog.String("op", op), slog.String("filename", filename))

	fileMeta := &drive.File{
		Name:     filename,
		MimeType: mime.TypeByExtension(filepath.Ext(filename)),
	}
	if a.folderID != "" {
		fileMeta.Parents = []string{a.folderID}
	}

	uploadedFile, err := a.srv.Files.
		Create(fileMeta).
		Media(reader).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		slog.Error("failed on uploading file to google drive", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	perm := &drive.Permission{
		Type: "anyone",
		Role: "reader",
	}

	_, err = a.srv.Permissions.Create(uploadedFile.Id, perm).Context(ctx).Do()
	if err != nil {
		slog.Error("failed on creating permission to uploaded file in google drive", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	slog.Debug("UploadFile completed", slog.String("rqID", rqID), slog.String("op", op), slog.String("fileID", uploadedFile.Id))

	return fmt.Sprintf(downloadLinkTemplate, uploadedFile.Id), nil
}

var queryEscaper = strings.NewReplacer(`\`, `\\`, "'", `\'`)

func (a *GoogleDriveApi) listQuery() string {
	q := []string{"trashed = false"}
	if a.prefix != "" {
		q = append(q, fmt.Sprintf("name contains '%s'", queryEscaper.Replace(a.prefix)))
	}
	if a.folderID != "" {
		q = append(q, fmt.Sprintf("'%s' in parents", queryEscaper.Replace(a.folderID)))
	}
	return strings.Join(q, " and ")
}

// DeleteOldFiles removes uploaded reports older than the configured ttl.
func (a *GoogleDriveApi) DeleteOldFiles(ctx context.Context) error {
	ctx = utils.WithRqID(ctx)
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "GoogleDriveApi.DeleteOldFiles"

	slog.Debug("DeleteOldFiles start", slog.String("rqID", rqID), slog.String("op", op))

	threshold := a.now().Add(-a.fileTTL)
	totalFiles, deletedFiles := 0, 0

	err := a.srv.Files.List().
		Q(a.listQuery()).
		Fields("nextPageToken, files(id, name, createdTime)").
		Context(ctx).
		Pages(ctx, func(page *drive.FileList) error {
			for _, f := range page.Files {
				totalFiles++
				if !strings.HasPrefix(f.Name, a.prefix) {
					continue
				}

				createdTime, err := time.Parse(time.RFC3339, f.CreatedTime)
				if err != nil {
					slog.Error(
						"failed parse time",
						slog.String("rqID", rqID),
						slog.String("op", op),
						slog.String("err", err.Error()),
						slog.String("fileID", f.Id),
						slog.String("createdTime", f.CreatedTime),
					)
					continue
				}

				if !createdTime.Before(threshold) {
					continue
				}

				if err := a.srv.Files.Delete(f.Id).Context(ctx).Do(); err != nil {
					slog.Error(
						"failed delete file",
						slog.String("rqID", rqID),
						slog.String("op", op),
						slog.String("err", err.Error()),
						slog.String("fileID", f.Id),
					)
					continue
				}
				deletedFiles++
			}
			return nil
		})
	if err != nil {
		slog.Error("failed on getting files", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	if deletedFiles > 0 {
		if err := a.srv.Files.EmptyTrash().Context(ctx).Do(); err != nil {
			slog.Error("failed empty trash", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}

	slog.Info("delete old files done", slog.String("rqID", rqID), slog.Int("deletedFiles", deletedFiles), slog.Int("remaining files", totalFiles-deletedFiles))

	return nil
}
