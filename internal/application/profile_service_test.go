package application

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profilehub/profilehub/internal/domain/entity"
	"github.com/profilehub/profilehub/pkg/mailer"
)

type fakeProfiles struct {
	rows      map[string]*entity.Profile
	updateErr error
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{rows: map[string]*entity.Profile{}}
}

func (f *fakeProfiles) GetByUserID(_ context.Context, userID string) (*entity.Profile, error) {
	p, ok := f.rows[userID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfiles) Upsert(_ context.Context, p *entity.Profile) error {
	if existing, ok := f.rows[p.UserID]; ok {
		existing.Email = p.Email
		*p = *existing
		return nil
	}
	cp := *p
	f.rows[p.UserID] = &cp
	return nil
}

func (f *fakeProfiles) Update(_ context.Context, p *entity.Profile) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	cp := *p
	f.rows[p.UserID] = &cp
	return nil
}

func (f *fakeProfiles) Delete(_ context.Context, userID string) error {
	delete(f.rows, userID)
	return nil
}

type fakeAccounts struct {
	rows    map[string]*entity.Account
	deleted []string
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{rows: map[string]*entity.Account{}}
}

func (f *fakeAccounts) Create(_ context.Context, a *entity.Account) error {
	f.rows[a.ID] = a
	return nil
}

func (f *fakeAccounts) GetByID(_ context.Context, id string) (*entity.Account, error) {
	return f.rows[id], nil
}

func (f *fakeAccounts) GetByEmail(_ context.Context, email string) (*entity.Account, error) {
	for _, a := range f.rows {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeAccounts) UpsertOAuth(_ context.Context, email, provider string) (*entity.Account, error) {
	return nil, nil
}

func (f *fakeAccounts) Delete(_ context.Context, id string) error {
	delete(f.rows, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeMedia struct {
	uploads        int
	uploadErr      error
	removed        []string
	removeErr      error
	removedFolders []string
	folderErr      map[string]error
}

func (f *fakeMedia) Upload(_ context.Context, category, userID, filename string, _ int64, _ io.Reader) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.uploads++
	return fmt.Sprintf("https://storage.googleapis.com/profiles/%s/%s/%d-%s", category, userID, f.uploads, filename), nil
}

func (f *fakeMedia) Remove(_ context.Context, fileURL string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removed = append(f.removed, fileURL)
	return nil
}

func (f *fakeMedia) RemoveFolder(_ context.Context, category, userID string) error {
	if err := f.folderErr[category]; err != nil {
		return err
	}
	f.removedFolders = append(f.removedFolders, category+"/"+userID)
	return nil
}

type fakeJobs struct {
	published []any
	err       error
}

func (f *fakeJobs) PublishJSON(_ context.Context, body any) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, body)
	return nil
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestService(profiles *fakeProfiles, accounts *fakeAccounts, media *fakeMedia, jobs *fakeJobs) *ProfileService {
	return NewProfileService(profiles, accounts, media, jobs, nil, "", testLogger(), "ProfileHub", "https://profilehub.example.com")
}

func TestLoadOrCreate_FirstLoginCreatesAndWelcomes(t *testing.T) {
	profiles := newFakeProfiles()
	jobs := &fakeJobs{}
	svc := newTestService(profiles, newFakeAccounts(), &fakeMedia{}, jobs)

	p, err := svc.LoadOrCreate(context.Background(), "u1", "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", p.UserID)
	assert.Equal(t, "a@b.com", p.Email)

	require.Len(t, jobs.published, 1)
	job := jobs.published[0].(mailer.EmailJob)
	assert.Equal(t, "a@b.com", job.To)
	assert.Equal(t, mailer.Welcome, job.Template)

	// Second call finds the row; no second welcome.
	_, err = svc.LoadOrCreate(context.Background(), "u1", "a@b.com")
	require.NoError(t, err)
	assert.Len(t, jobs.published, 1)
}

func TestLoadOrCreate_EmailQueueFailureDoesNotBlock(t *testing.T) {
	profiles := newFakeProfiles()
	jobs := &fakeJobs{err: fmt.Errorf("broker down")}
	svc := newTestService(profiles, newFakeAccounts(), &fakeMedia{}, jobs)

	p, err := svc.LoadOrCreate(context.Background(), "u1", "a@b.com")
	require.NoError(t, err)
	assert.NotNil(t, p)
}

func TestSave_ValidatesBeforePersisting(t *testing.T) {
	profiles := newFakeProfiles()
	profiles.rows["u1"] = &entity.Profile{UserID: "u1", Email: "a@b.com"}
	svc := newTestService(profiles, newFakeAccounts(), &fakeMedia{}, &fakeJobs{})

	_, err := svc.Save(context.Background(), "u1", SaveInput{Phone: "abc"})
	require.Error(t, err)
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.Empty(t, profiles.rows["u1"].Phone)
}

func TestSave_TrimsAndPersists(t *testing.T) {
	profiles := newFakeProfiles()
	profiles.rows["u1"] = &entity.Profile{UserID: "u1", Email: "a@b.com"}
	svc := newTestService(profiles, newFakeAccounts(), &fakeMedia{}, &fakeJobs{})

	p, err := svc.Save(context.Background(), "u1", SaveInput{
		Username:  "  alice  ",
		FirstName: "Alice",
		Phone:     "+1234567890",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Username)
	assert.Equal(t, "alice", profiles.rows["u1"].Username)
}

func TestSave_UnknownUserFails(t *testing.T) {
	svc := newTestService(newFakeProfiles(), newFakeAccounts(), &fakeMedia{}, &fakeJobs{})
	_, err := svc.Save(context.Background(), "ghost", SaveInput{})
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestUploadAvatar_SupersedesOldObject(t *testing.T) {
	profiles := newFakeProfiles()
	profiles.rows["u1"] = &entity.Profile{UserID: "u1", Email: "a@b.com", AvatarURL: "https://storage.googleapis.com/profiles/avatar/u1/old.jpg"}
	media := &fakeMedia{}
	svc := newTestService(profiles, newFakeAccounts(), media, &fakeJobs{})

	p, err := svc.UploadAvatar(context.Background(), "u1", "new.png", 1024, strings.NewReader("img"))
	require.NoError(t, err)
	assert.Contains(t, p.AvatarURL, "avatar/u1/")
	assert.Equal(t, []string{"https://storage.googleapis.com/profiles/avatar/u1/old.jpg"}, media.removed)
}

func TestUploadAvatar_RemoveFailureKeepsNewURL(t *testing.T) {
	profiles := newFakeProfiles()
	profiles.rows["u1"] = &entity.Profile{UserID: "u1", Email: "a@b.com", AvatarURL: "https://storage.googleapis.com/profiles/avatar/u1/old.jpg"}
	media := &fakeMedia{removeErr: fmt.Errorf("transient")}
	svc := newTestService(profiles, newFakeAccounts(), media, &fakeJobs{})

	p, err := svc.UploadAvatar(context.Background(), "u1", "new.png", 1024, strings.NewReader("img"))
	require.NoError(t, err)
	assert.NotEqual(t, "https://storage.googleapis.com/profiles/avatar/u1/old.jpg", p.AvatarURL)
}

func TestAddGalleryImage_CapAtNine(t *testing.T) {
	profiles := newFakeProfiles()
	p := &entity.Profile{UserID: "u1", Email: "a@b.com"}
	for i := 0; i < entity.MaxGalleryImages; i++ {
		p.Gallery = append(p.Gallery, fmt.Sprintf("https://img/%d.jpg", i))
	}
	profiles.rows["u1"] = p
	media := &fakeMedia{}
	svc := newTestService(profiles, newFakeAccounts(), media, &fakeJobs{})

	_, err := svc.AddGalleryImage(context.Background(), "u1", "one-more.jpg", 1024, strings.NewReader("img"))
	require.EqualError(t, err, "Gallery is limited to 9 images.")
	assert.Zero(t, media.uploads)
}

func TestAddGalleryImage_Appends(t *testing.T) {
	profiles := newFakeProfiles()
	profiles.rows["u1"] = &entity.Profile{UserID: "u1", Email: "a@b.com", Gallery: []string{"https://img/0.jpg"}}
	svc := newTestService(profiles, newFakeAccounts(), &fakeMedia{}, &fakeJobs{})

	p, err := svc.AddGalleryImage(context.Background(), "u1", "two.jpg", 1024, strings.NewReader("img"))
	require.NoError(t, err)
	require.Len(t, p.Gallery, 2)
	assert.Equal(t, "https://img/0.jpg", p.Gallery[0])
}

func TestRemoveGalleryImage(t *testing.T) {
	profiles := newFakeProfiles()
	profiles.rows["u1"] = &entity.Profile{UserID: "u1", Email: "a@b.com", Gallery: []string{"https://img/0.jpg", "https://img/1.jpg"}}
	media := &fakeMedia{}
	svc := newTestService(profiles, newFakeAccounts(), media, &fakeJobs{})

	p, err := svc.RemoveGalleryImage(context.Background(), "u1", "https://img/0.jpg")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://img/1.jpg"}, p.Gallery)
	assert.Equal(t, []string{"https://img/0.jpg"}, media.removed)

	_, err = svc.RemoveGalleryImage(context.Background(), "u1", "https://img/0.jpg")
	assert.EqualError(t, err, "Image not found in gallery.")
}

func TestDeleteAccount_CleansEverything(t *testing.T) {
	profiles := newFakeProfiles()
	profiles.rows["u1"] = &entity.Profile{UserID: "u1", Email: "a@b.com"}
	accounts := newFakeAccounts()
	accounts.rows["u1"] = &entity.Account{ID: "u1", Email: "a@b.com"}
	media := &fakeMedia{}
	jobs := &fakeJobs{}
	svc := newTestService(profiles, accounts, media, jobs)

	require.NoError(t, svc.DeleteAccount(context.Background(), "u1"))

	assert.Empty(t, profiles.rows)
	assert.Equal(t, []string{"u1"}, accounts.deleted)
	assert.ElementsMatch(t, []string{"avatar/u1", "cover/u1", "gallery/u1"}, media.removedFolders)

	require.Len(t, jobs.published, 1)
	job := jobs.published[0].(mailer.EmailJob)
	assert.Equal(t, mailer.AccountDeleted, job.Template)
	assert.Equal(t, "a@b.com", job.To)
}

func TestDeleteAccount_FolderFailureDoesNotAbort(t *testing.T) {
	profiles := newFakeProfiles()
	profiles.rows["u1"] = &entity.Profile{UserID: "u1", Email: "a@b.com"}
	accounts := newFakeAccounts()
	accounts.rows["u1"] = &entity.Account{ID: "u1", Email: "a@b.com"}
	media := &fakeMedia{folderErr: map[string]error{"cover": fmt.Errorf("listing failed")}}
	svc := newTestService(profiles, accounts, media, &fakeJobs{})

	require.NoError(t, svc.DeleteAccount(context.Background(), "u1"))
	assert.Equal(t, []string{"u1"}, accounts.deleted)
	assert.ElementsMatch(t, []string{"avatar/u1", "gallery/u1"}, media.removedFolders)
}
