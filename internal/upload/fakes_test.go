package upload

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/EgorLis/infdot-upload/internal/domain"
)

type fakeUsers struct {
	mu      sync.Mutex
	byKey   map[string]domain.User
	byLogin map[string]domain.User
	err     error
	calls   int
	keyHits int
	logHits int
}

func (f *fakeUsers) UserByAPIKey(_ context.Context, key string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.keyHits++
	if f.err != nil {
		return domain.User{}, f.err
	}
	u, ok := f.byKey[key]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) UserByLogin(_ context.Context, login string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.logHits++
	if f.err != nil {
		return domain.User{}, f.err
	}
	u, ok := f.byLogin[login]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

// «хэш» в тестах: сам пароль
type plainPasswords struct{}

func (plainPasswords) Verify(plain, encodedHash string) (bool, error) {
	return plain == encodedHash, nil
}

type fakeProjects struct {
	projects     map[string]domain.Project
	versions     map[domain.ProjectID][]domain.Version
	roles        map[domain.UserID][]domain.Role
	err          error
	projectCalls int
	versionCalls int
	roleCalls    int
}

func (f *fakeProjects) ProjectByIdentifier(_ context.Context, identifier string) (domain.Project, error) {
	f.projectCalls++
	if f.err != nil {
		return domain.Project{}, f.err
	}
	p, ok := f.projects[identifier]
	if !ok {
		return domain.Project{}, domain.ErrNotFound
	}
	return p, nil
}

func (f *fakeProjects) VersionsOfProject(_ context.Context, id domain.ProjectID) ([]domain.Version, error) {
	f.versionCalls++
	return f.versions[id], nil
}

func (f *fakeProjects) RolesForProject(_ context.Context, user domain.UserID, _ domain.ProjectID) ([]domain.Role, error) {
	f.roleCalls++
	return f.roles[user], nil
}

type fakeAttachments struct {
	byVersion map[domain.VersionID][]domain.Attachment
	calls     int
}

func (f *fakeAttachments) AttachmentsOfVersion(_ context.Context, id domain.VersionID) ([]domain.Attachment, error) {
	f.calls++
	return f.byVersion[id], nil
}

func (f *fakeAttachments) InsertAttachment(_ context.Context, a domain.Attachment) (domain.Attachment, bool, error) {
	f.byVersion[a.VersionID] = append(f.byVersion[a.VersionID], a)
	return a, true, nil
}

type fakeCreator struct {
	atts    *fakeAttachments
	err     error
	refuse  bool
	created []domain.NewAttachment
	calls   int
}

func (f *fakeCreator) Create(ctx context.Context, in domain.NewAttachment) (domain.Attachment, bool, error) {
	f.calls++
	if f.err != nil {
		return domain.Attachment{}, false, f.err
	}
	if f.refuse {
		return domain.Attachment{}, false, nil
	}
	f.created = append(f.created, in)
	return f.atts.InsertAttachment(ctx, domain.Attachment{
		ID:          uuid.New(),
		VersionID:   in.Version.ID,
		AuthorID:    in.Author.ID,
		Filename:    in.Filename,
		Description: in.Description,
		ContentType: in.ContentType,
		SizeBytes:   int64(len(in.Content)),
	})
}

type fakeNotifier struct {
	enabled bool
	err     error
	sent    [][]domain.Attachment
}

func (f *fakeNotifier) IsEventEnabled(event string) bool {
	return f.enabled && event == domain.EventFileAdded
}

func (f *fakeNotifier) SendAttachmentsAdded(_ context.Context, atts []domain.Attachment) error {
	f.sent = append(f.sent, atts)
	return f.err
}
