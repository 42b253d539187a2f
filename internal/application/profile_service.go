package application

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/profilehub/profilehub/internal/domain/entity"
	repo "github.com/profilehub/profilehub/internal/domain/repository"
	"github.com/profilehub/profilehub/internal/infrastructure/gcstore"
	"github.com/profilehub/profilehub/pkg/mailer"
)

var ErrProfileNotFound = errors.New("profile not found")

// MediaStore is the slice of object storage the profile service needs.
type MediaStore interface {
	Upload(ctx context.Context, category, userID, filename string, size int64, r io.Reader) (string, error)
	Remove(ctx context.Context, fileURL string) error
	RemoveFolder(ctx context.Context, category, userID string) error
}

// JobPublisher enqueues background jobs, currently only email sends.
type JobPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

type ProfileService struct {
	Profiles        repo.ProfileRepository
	Accounts        repo.AccountRepository
	Media           MediaStore
	Jobs            JobPublisher
	ES              *elasticsearch.Client
	ESProfilesIndex string
	Logger          *logrus.Logger
	AppName         string
	ServiceURL      string
}

func NewProfileService(profiles repo.ProfileRepository, accounts repo.AccountRepository, media MediaStore, jobs JobPublisher, es *elasticsearch.Client, esIndex string, logger *logrus.Logger, appName, serviceURL string) *ProfileService {
	return &ProfileService{
		Profiles:        profiles,
		Accounts:        accounts,
		Media:           media,
		Jobs:            jobs,
		ES:              es,
		ESProfilesIndex: esIndex,
		Logger:          logger,
		AppName:         appName,
		ServiceURL:      serviceURL,
	}
}

// LoadOrCreate fetches the user's profile, creating a default row on first
// login. The welcome email is queued only when the row did not exist yet.
func (s *ProfileService) LoadOrCreate(ctx context.Context, userID, email string) (*entity.Profile, error) {
	p, err := s.Profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p != nil {
		return p, nil
	}

	p = &entity.Profile{UserID: userID, Email: email}
	if err := s.Profiles.Upsert(ctx, p); err != nil {
		return nil, err
	}
	s.queueEmail(ctx, email, mailer.Welcome, map[string]any{
		"AppName":    s.AppName,
		"ServiceURL": s.ServiceURL,
	})
	s.indexProfile(ctx, p)
	return p, nil
}

// SaveInput carries the editable profile fields. URLs and gallery are managed
// through the upload endpoints, not through save.
type SaveInput struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Username    string `json:"username"`
	DateOfBirth string `json:"date_of_birth"`
	Phone       string `json:"phone"`
	Bio         string `json:"bio"`
	Location    string `json:"location"`
	Timezone    string `json:"timezone"`
}

// Save validates the input and persists it. Validation failures and known
// database errors surface as user-facing messages.
func (s *ProfileService) Save(ctx context.Context, userID string, in SaveInput) (*entity.Profile, error) {
	p, err := s.Profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProfileNotFound
	}

	p.FirstName = strings.TrimSpace(in.FirstName)
	p.LastName = strings.TrimSpace(in.LastName)
	p.Username = strings.TrimSpace(in.Username)
	p.DateOfBirth = strings.TrimSpace(in.DateOfBirth)
	p.Phone = strings.TrimSpace(in.Phone)
	p.Bio = strings.TrimSpace(in.Bio)
	p.Location = strings.TrimSpace(in.Location)
	p.Timezone = strings.TrimSpace(in.Timezone)

	if err := ValidateForSave(p); err != nil {
		return nil, err
	}
	if err := s.Profiles.Update(ctx, p); err != nil {
		return nil, err
	}
	s.indexProfile(ctx, p)
	return p, nil
}

// UploadAvatar stores a new avatar and deletes the superseded one. The old
// object's removal is best effort; a failure there must not undo the upload.
func (s *ProfileService) UploadAvatar(ctx context.Context, userID, filename string, size int64, r io.Reader) (*entity.Profile, error) {
	return s.replaceImage(ctx, userID, gcstore.CategoryAvatar, filename, size, r)
}

// UploadCover stores a new cover image and deletes the superseded one.
func (s *ProfileService) UploadCover(ctx context.Context, userID, filename string, size int64, r io.Reader) (*entity.Profile, error) {
	return s.replaceImage(ctx, userID, gcstore.CategoryCover, filename, size, r)
}

func (s *ProfileService) replaceImage(ctx context.Context, userID, category, filename string, size int64, r io.Reader) (*entity.Profile, error) {
	p, err := s.Profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProfileNotFound
	}

	url, err := s.Media.Upload(ctx, category, userID, filename, size, r)
	if err != nil {
		return nil, err
	}

	var old string
	switch category {
	case gcstore.CategoryAvatar:
		old, p.AvatarURL = p.AvatarURL, url
	case gcstore.CategoryCover:
		old, p.CoverURL = p.CoverURL, url
	}
	if err := s.Profiles.Update(ctx, p); err != nil {
		return nil, err
	}

	if old != "" {
		if err := s.Media.Remove(ctx, old); err != nil {
			s.Logger.WithError(err).WithField("url", old).Warn("failed to remove superseded image")
		}
	}
	s.indexProfile(ctx, p)
	return p, nil
}

// AddGalleryImage uploads one image and appends its URL to the gallery.
func (s *ProfileService) AddGalleryImage(ctx context.Context, userID, filename string, size int64, r io.Reader) (*entity.Profile, error) {
	p, err := s.Profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProfileNotFound
	}
	if len(p.Gallery) >= entity.MaxGalleryImages {
		return nil, &ValidationError{Message: "Gallery is limited to 9 images."}
	}

	url, err := s.Media.Upload(ctx, gcstore.CategoryGallery, userID, filename, size, r)
	if err != nil {
		return nil, err
	}
	p.Gallery = append(p.Gallery, url)
	if err := s.Profiles.Update(ctx, p); err != nil {
		return nil, err
	}
	s.indexProfile(ctx, p)
	return p, nil
}

// RemoveGalleryImage drops the URL from the gallery and deletes the object.
// Object deletion is best effort once the reference is gone.
func (s *ProfileService) RemoveGalleryImage(ctx context.Context, userID, fileURL string) (*entity.Profile, error) {
	p, err := s.Profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProfileNotFound
	}

	kept := make([]string, 0, len(p.Gallery))
	found := false
	for _, u := range p.Gallery {
		if u == fileURL && !found {
			found = true
			continue
		}
		kept = append(kept, u)
	}
	if !found {
		return nil, &ValidationError{Message: "Image not found in gallery."}
	}
	p.Gallery = kept
	if err := s.Profiles.Update(ctx, p); err != nil {
		return nil, err
	}

	if err := s.Media.Remove(ctx, fileURL); err != nil {
		s.Logger.WithError(err).WithField("url", fileURL).Warn("failed to remove gallery object")
	}
	s.indexProfile(ctx, p)
	return p, nil
}

// DeleteAccount removes the profile row, all stored media, and the account
// itself. Media folders are cleaned independently; a failure in one folder is
// logged and does not stop the others or the account removal.
func (s *ProfileService) DeleteAccount(ctx context.Context, userID string) error {
	acct, err := s.Accounts.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.Profiles.Delete(ctx, userID); err != nil {
		return err
	}
	for _, category := range []string{gcstore.CategoryAvatar, gcstore.CategoryCover, gcstore.CategoryGallery} {
		if err := s.Media.RemoveFolder(ctx, category, userID); err != nil {
			s.Logger.WithError(err).WithFields(logrus.Fields{"category": category, "user_id": userID}).Warn("failed to clean media folder")
		}
	}
	if err := s.Accounts.Delete(ctx, userID); err != nil {
		return err
	}
	s.deindexProfile(ctx, userID)

	if acct != nil {
		s.queueEmail(ctx, acct.Email, mailer.AccountDeleted, map[string]any{
			"AppName": s.AppName,
		})
	}
	s.Logger.WithField("user_id", userID).Info("account deleted")
	return nil
}

func (s *ProfileService) queueEmail(ctx context.Context, to, template string, data map[string]any) {
	if s.Jobs == nil || to == "" {
		return
	}
	job := mailer.EmailJob{To: to, Template: template, Data: data}
	if err := s.Jobs.PublishJSON(ctx, job); err != nil {
		s.Logger.WithError(err).WithField("template", template).Warn("failed to queue email job")
	}
}

func (s *ProfileService) indexProfile(ctx context.Context, p *entity.Profile) {
	if s.ES == nil || s.ESProfilesIndex == "" {
		return
	}
	doc := map[string]any{
		"user_id":    p.UserID,
		"email":      p.Email,
		"username":   p.Username,
		"first_name": p.FirstName,
		"last_name":  p.LastName,
		"location":   p.Location,
		"updated_at": p.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESProfilesIndex, DocumentID: p.UserID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", p.UserID).Warn("es index failed")
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		s.Logger.WithField("status", res.Status()).WithField("user_id", p.UserID).Warn("es index response error")
	}
}

func (s *ProfileService) deindexProfile(ctx context.Context, userID string) {
	if s.ES == nil || s.ESProfilesIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESProfilesIndex, DocumentID: userID}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Warn("es delete failed")
		return
	}
	_ = res.Body.Close()
}

// SearchProfiles runs a multi_match query over the profile index.
func (s *ProfileService) SearchProfiles(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESProfilesIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"username^2", "first_name", "last_name"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := s.ES.Search(s.ES.Search.WithContext(c), s.ES.Search.WithIndex(s.ESProfilesIndex), s.ES.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
