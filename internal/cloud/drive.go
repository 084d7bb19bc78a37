package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"google.golang.org/api/drive/v3"
	goption "google.golang.org/api/option"
)

const appDataFolder = "appDataFolder"

// Drive keeps each user's Document as a JSON file in the app data folder of a
// service account. updatedAt is mirrored in appProperties so listings can
// show it without downloading the file.
type Drive struct {
	svc *drive.Service
}

// DriveCredentials resolves service account credentials from inline JSON, a
// file path or GOOGLE_APPLICATION_CREDENTIALS, in that order.
func DriveCredentials(inline, file string) ([]byte, error) {
	inline = strings.TrimSpace(inline)
	file = strings.TrimSpace(file)
	if inline != "" {
		return []byte(inline), nil
	}
	if file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if file == "" {
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return b, nil
}

func NewDrive(ctx context.Context, credentialsJSON []byte) (*Drive, error) {
	svc, err := drive.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(drive.DriveAppdataScope))
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return &Drive{svc: svc}, nil
}

func driveFileName(uid string) string { return "lifeadmin-" + uid + ".json" }

func (d *Drive) find(ctx context.Context, uid string) (*drive.File, error) {
	name := strings.ReplaceAll(driveFileName(uid), "'", `\'`)
	list, err := d.svc.Files.List().
		Spaces(appDataFolder).
		Q(fmt.Sprintf("name = '%s' and trashed = false", name)).
		Fields("files(id, name, modifiedTime, appProperties)").
		PageSize(1).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("list drive files: %w", err)
	}
	if len(list.Files) == 0 {
		return nil, nil
	}
	return list.Files[0], nil
}

func (d *Drive) Pull(ctx context.Context, uid string) (*Document, error) {
	f, err := d.find(ctx, uid)
	if err != nil || f == nil {
		return nil, err
	}
	resp, err := d.svc.Files.Get(f.Id).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("download drive file: %w", err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read drive file: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("decode cloud doc: %w", err)
	}
	if t, err := time.Parse(time.RFC3339, f.ModifiedTime); err == nil {
		doc.ServerUpdatedAt = t.UnixMilli()
	}
	if doc.UpdatedAt == 0 {
		doc.UpdatedAt, _ = strconv.ParseInt(f.AppProperties["updatedAt"], 10, 64)
	}
	return &doc, nil
}

func (d *Drive) Push(ctx context.Context, uid string, doc Document) error {
	doc.ServerUpdatedAt = 0
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode cloud doc: %w", err)
	}
	props := map[string]string{"updatedAt": strconv.FormatInt(doc.UpdatedAt, 10)}
	f, err := d.find(ctx, uid)
	if err != nil {
		return err
	}
	if f == nil {
		_, err = d.svc.Files.Create(&drive.File{
			Name:          driveFileName(uid),
			Parents:       []string{appDataFolder},
			MimeType:      "application/json",
			AppProperties: props,
		}).Media(bytes.NewReader(b)).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("create drive file: %w", err)
		}
		return nil
	}
	_, err = d.svc.Files.Update(f.Id, &drive.File{AppProperties: props}).
		Media(bytes.NewReader(b)).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("update drive file: %w", err)
	}
	return nil
}
