package gcstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/iterator"

	"github.com/profilehub/profilehub/pkg/helpers"
)

// UploadError carries a message safe to render to end users verbatim.
type UploadError struct {
	Message string
}

func (e *UploadError) Error() string { return e.Message }

// Store handles profile media in a Google Cloud Storage bucket.
type Store struct {
	Client *storage.Client
	Bucket string
	Logger *logrus.Logger
}

func NewStore(client *storage.Client, bucket string, logger *logrus.Logger) *Store {
	return &Store{Client: client, Bucket: bucket, Logger: logger}
}

// Upload validates the file and writes it under
// <category>/<userID>/<timestamp>-<random>.<ext>, returning the public URL.
func (s *Store) Upload(ctx context.Context, category, userID, filename string, size int64, r io.Reader) (string, error) {
	ct, err := validateFile(category, filename, size)
	if err != nil {
		return "", err
	}
	obj := objectPath(category, userID, filename, time.Now())
	url, err := helpers.UploadObject(ctx, s.Client, s.Bucket, obj, ct, r)
	if err != nil {
		return "", s.rewriteBucketError(err)
	}
	s.Logger.WithFields(logrus.Fields{"object": obj, "user_id": userID}).Info("media uploaded")
	return url, nil
}

// Remove deletes the object behind a public URL previously returned by Upload.
// Missing objects are not an error; the caller's intent is already satisfied.
func (s *Store) Remove(ctx context.Context, fileURL string) error {
	obj, err := s.objectFromURL(fileURL)
	if err != nil {
		return err
	}
	err = s.Client.Bucket(s.Bucket).Object(obj).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	return err
}

// RemoveFolder deletes every object under a user's category folder. Individual
// delete failures are logged and skipped so one stuck object cannot block
// account deletion.
func (s *Store) RemoveFolder(ctx context.Context, category, userID string) error {
	names, err := s.ListFolder(ctx, category, userID)
	if err != nil {
		return err
	}
	bkt := s.Client.Bucket(s.Bucket)
	for _, name := range names {
		if err := bkt.Object(name).Delete(ctx); err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
			s.Logger.WithError(err).WithField("object", name).Warn("failed to delete media object")
		}
	}
	return nil
}

// ListFolder returns the object names under <category>/<userID>/.
func (s *Store) ListFolder(ctx context.Context, category, userID string) ([]string, error) {
	it := s.Client.Bucket(s.Bucket).Objects(ctx, &storage.Query{Prefix: folderPrefix(category, userID)})
	var names []string
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, s.rewriteBucketError(err)
		}
		names = append(names, attrs.Name)
	}
	return names, nil
}

func (s *Store) objectFromURL(fileURL string) (string, error) {
	prefix := helpers.PublicURL(s.Bucket, "")
	if !strings.HasPrefix(fileURL, prefix) || len(fileURL) == len(prefix) {
		return "", &UploadError{Message: "invalid file URL"}
	}
	return strings.TrimPrefix(fileURL, prefix), nil
}

func (s *Store) rewriteBucketError(err error) error {
	if errors.Is(err, storage.ErrBucketNotExist) || strings.Contains(err.Error(), "bucket doesn't exist") {
		return &UploadError{Message: fmt.Sprintf("Storage bucket %q not found. Create it in the storage console before uploading media.", s.Bucket)}
	}
	return err
}
