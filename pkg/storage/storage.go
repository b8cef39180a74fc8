// Package storage keeps proof documents in Google Cloud Storage and vets
// pasted cloud-drive links.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// MaxUploadSize caps a single proof document.
const MaxUploadSize = 10 << 20

var (
	ErrNotConfigured   = errors.New("file storage is not configured")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrTooLarge        = errors.New("file is too large")
	ErrLinkNotAllowed  = errors.New("link is not from a supported cloud drive")
)

var allowedMimeTypes = map[string]bool{
	"application/pdf":          true,
	"application/msword":       true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":       true,
	"image/jpeg": true,
	"image/png":  true,
}

// allowedHosts lists the cloud drives a pasted link may point at. Subdomains match.
var allowedHosts = []string{
	"drive.google.com",
	"docs.google.com",
	"dropbox.com",
	"dl.dropboxusercontent.com",
	"onedrive.live.com",
	"1drv.ms",
	"sharepoint.com",
	"box.com",
	"icloud.com",
}

// Store uploads attachments to one bucket. Without a bucket it still vets
// links but refuses uploads.
type Store struct {
	client *gcs.Client
	bucket string
}

// NewStore builds a client from explicit credentials when given, otherwise
// from application default credentials. An empty bucket yields a link-only store.
func NewStore(ctx context.Context, bucket, credentialsJSON string) (*Store, error) {
	if strings.TrimSpace(bucket) == "" {
		logrus.Warn("GCS_BUCKET not set, file attachments are disabled")
		return &Store{}, nil
	}
	var opts []option.ClientOption
	if strings.TrimSpace(credentialsJSON) != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credentialsJSON)))
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	return &Store{client: client, bucket: bucket}, nil
}

func (s *Store) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

// Upload writes the file under attachments/<startup>/ and returns its public URL.
func (s *Store) Upload(ctx context.Context, startupID uint, fileName, contentType string, size int64, r io.Reader) (string, error) {
	if s == nil || s.client == nil {
		return "", ErrNotConfigured
	}
	if size > MaxUploadSize {
		return "", ErrTooLarge
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read file: %w", err)
	}
	head = head[:n]
	mimeType := DetectContentType(head, fileName)
	if !allowedMimeTypes[mimeType] {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, mimeType)
	}

	objectName := ObjectName(startupID, fileName)
	wc := s.client.Bucket(s.bucket).Object(objectName).NewWriter(ctx)
	wc.ContentType = mimeType
	wc.Metadata = map[string]string{"original-name": path.Base(fileName)}

	written, err := io.Copy(wc, io.LimitReader(io.MultiReader(bytes.NewReader(head), r), MaxUploadSize+1))
	if err != nil {
		_ = wc.Close()
		return "", fmt.Errorf("write object: %w", err)
	}
	if written > MaxUploadSize {
		_ = wc.Close()
		_ = s.client.Bucket(s.bucket).Object(objectName).Delete(ctx)
		return "", ErrTooLarge
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("close object writer: %w", err)
	}

	logrus.WithFields(logrus.Fields{"bucket": s.bucket, "object": objectName, "size": written}).Info("Attachment uploaded")
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, objectName), nil
}

// ValidateLink accepts https links to an allowed cloud drive and returns the
// normalized URL.
func (s *Store) ValidateLink(link string) (string, error) {
	return ValidateLink(link)
}

func ValidateLink(link string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("%w: not a url", ErrLinkNotAllowed)
	}
	if !strings.EqualFold(u.Scheme, "https") {
		return "", fmt.Errorf("%w: https is required", ErrLinkNotAllowed)
	}
	host := strings.ToLower(u.Hostname())
	for _, h := range allowedHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			u.Scheme = "https"
			u.Host = strings.ToLower(u.Host)
			return u.String(), nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrLinkNotAllowed, host)
}

// DetectContentType sniffs the file head; office formats sniff as zip and are
// told apart by extension.
func DetectContentType(head []byte, fileName string) string {
	mimeType := http.DetectContentType(head)
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = mimeType[:i]
	}
	if mimeType == "application/zip" {
		switch strings.ToLower(path.Ext(fileName)) {
		case ".docx":
			mimeType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
		case ".xlsx":
			mimeType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		}
	}
	return mimeType
}

// ObjectName places a file under its startup with a random name, keeping the extension.
func ObjectName(startupID uint, fileName string) string {
	return fmt.Sprintf("attachments/%d/%s%s", startupID, uuid.NewString(), strings.ToLower(path.Ext(fileName)))
}
