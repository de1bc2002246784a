package upload

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/EgorLis/infdot-upload/internal/domain"
)

// errUnresolved: стадия получила незаполненную сущность предыдущей стадии.
// Такое состояние никогда не трактуется как разрешение.
var errUnresolved = errors.New("upload: stage precondition not resolved")

type Deps struct {
	Users       domain.UsersRepo
	Passwords   domain.PasswordChecker
	Projects    domain.ProjectsRepo
	Attachments domain.AttachmentsRepo
	Creator     domain.AttachmentCreator
	Notifier    domain.Notifier
}

// Service проверяет и сохраняет одну загрузку.
type Service struct {
	users       domain.UsersRepo
	passwords   domain.PasswordChecker
	projects    domain.ProjectsRepo
	attachments domain.AttachmentsRepo
	creator     domain.AttachmentCreator
	notifier    domain.Notifier
	log         zerolog.Logger
}

func New(deps Deps, log zerolog.Logger) *Service {
	return &Service{
		users:       deps.Users,
		passwords:   deps.Passwords,
		projects:    deps.Projects,
		attachments: deps.Attachments,
		creator:     deps.Creator,
		notifier:    deps.Notifier,
		log:         log,
	}
}

// state: всё, что относится к одному запросу
type state struct {
	req  Request
	errs ErrorList

	user       *domain.User
	project    *domain.Project
	version    *domain.Version
	filename   string
	attachment *domain.Attachment
}

type stage struct {
	name string
	run  func(ctx context.Context, st *state) error
}

func (s *Service) stages() []stage {
	return []stage{
		{"presence", s.checkPresence},
		{"credentials", s.resolveCredentials},
		{"project", s.resolveProject},
		{"version", s.resolveVersion},
		{"permission", s.authorize},
		{"duplicate", s.checkDuplicate},
		{"commit", s.commit},
	}
}

// Upload прогоняет запрос по стадиям. Первая стадия с ошибками останавливает
// конвейер. Ошибка (error) возвращается только при сбое хранилищ до стадии
// сохранения; всё остальное: в Outcome.
func (s *Service) Upload(ctx context.Context, req Request) (Outcome, error) {
	start := time.Now()
	st := &state{req: req}

	for _, stg := range s.stages() {
		if err := stg.run(ctx, st); err != nil {
			uploadsTotal.WithLabelValues(resultError).Inc()
			s.log.Error().Err(err).Str("stage", stg.name).Msg("upload aborted")
			return Outcome{}, fmt.Errorf("%s: %w", stg.name, err)
		}
		if !st.errs.Empty() {
			rejectedTotal.WithLabelValues(stg.name).Inc()
			uploadsTotal.WithLabelValues(resultFailure).Inc()
			s.log.Info().
				Str("stage", stg.name).
				Strs("errors", st.errs.Messages()).
				Dur("took", time.Since(start)).
				Msg("upload rejected")
			return Outcome{Errors: st.errs.Messages()}, nil
		}
	}

	if st.attachment == nil {
		return Outcome{}, errUnresolved
	}
	s.notify(ctx, *st.attachment)

	uploadsTotal.WithLabelValues(resultSuccess).Inc()
	s.log.Info().
		Str("attachment_id", st.attachment.ID.String()).
		Str("version_id", st.attachment.VersionID.String()).
		Str("filename", st.attachment.Filename).
		Dur("took", time.Since(start)).
		Msg("upload stored")
	return Outcome{Stored: st.attachment}, nil
}

// Все проверки «чего-то не хватает»: вместе, до любых обращений к хранилищам.
func (s *Service) checkPresence(_ context.Context, st *state) error {
	r := st.req
	if r.APIKey == "" && r.User == "" {
		st.errs.Add(MsgNoCredentials)
	}
	if r.User != "" && r.Password == "" {
		st.errs.Add(MsgNoPassword)
	}
	if r.Project == "" {
		st.errs.Add(MsgNoProject)
	}
	if r.VersionID == "" {
		st.errs.Add(MsgNoVersion)
	}
	if r.File == nil {
		st.errs.Add(MsgNoFile)
	}
	return nil
}

func (s *Service) resolveCredentials(ctx context.Context, st *state) error {
	creds := CredentialsFrom(st.req)
	if creds == nil {
		return errUnresolved
	}
	u, ok, err := creds.resolve(ctx, s, &st.errs)
	if err != nil {
		return err
	}
	if ok {
		st.user = &u
	}
	return nil
}

func (s *Service) resolveProject(ctx context.Context, st *state) error {
	if st.user == nil {
		return errUnresolved
	}
	p, err := s.projects.ProjectByIdentifier(ctx, st.req.Project)
	if errors.Is(err, domain.ErrNotFound) {
		st.errs.Add(MsgBadProject)
		return nil
	}
	if err != nil {
		return fmt.Errorf("project by identifier: %w", err)
	}
	st.project = &p
	return nil
}

// Версия ищется только среди версий уже найденного проекта и должна совпасть
// по идентификатору. Регистр записи uuid значения не имеет.
func (s *Service) resolveVersion(ctx context.Context, st *state) error {
	if st.project == nil {
		return errUnresolved
	}
	id, err := uuid.Parse(st.req.VersionID)
	if err != nil {
		st.errs.Add(MsgBadVersion)
		return nil
	}
	versions, err := s.projects.VersionsOfProject(ctx, st.project.ID)
	if err != nil {
		return fmt.Errorf("versions of project: %w", err)
	}
	for _, v := range versions {
		if v.ID == id && v.ProjectID == st.project.ID {
			found := v
			st.version = &found
			break
		}
	}
	if st.version == nil {
		st.errs.Add(MsgBadVersion)
	}
	return nil
}

func (s *Service) authorize(ctx context.Context, st *state) error {
	if st.user == nil || st.project == nil || st.version == nil {
		return errUnresolved
	}
	roles, err := s.projects.RolesForProject(ctx, st.user.ID, st.project.ID)
	if err != nil {
		return fmt.Errorf("roles for project: %w", err)
	}
	if !CanManageFiles(roles) {
		st.errs.Add(MsgNoPermission)
	}
	return nil
}

// CanManageFiles: логическое ИЛИ по всем ролям; без ролей: false.
func CanManageFiles(roles []domain.Role) bool {
	allowed := false
	for _, r := range roles {
		allowed = allowed || r.Allows(domain.PermManageFiles)
	}
	return allowed
}

func (s *Service) checkDuplicate(ctx context.Context, st *state) error {
	if st.version == nil || st.req.File == nil {
		return errUnresolved
	}
	st.filename = domain.SanitizeFilename(st.req.File.Name)

	existing, err := s.attachments.AttachmentsOfVersion(ctx, st.version.ID)
	if err != nil {
		return fmt.Errorf("attachments of version: %w", err)
	}
	for _, a := range existing {
		if a.Filename == st.filename {
			st.errs.Add(MsgFileExists)
			break
		}
	}
	return nil
}

// Сбои хранилища на этой стадии не пробрасываются: они становятся сообщениями.
func (s *Service) commit(ctx context.Context, st *state) error {
	if st.user == nil || st.version == nil || st.req.File == nil {
		return errUnresolved
	}
	start := time.Now()
	a, created, err := s.creator.Create(ctx, domain.NewAttachment{
		Version:     *st.version,
		Author:      *st.user,
		Filename:    st.filename,
		Description: "",
		ContentType: st.req.File.ContentType,
		Content:     st.req.File.Content,
	})
	commitDuration.Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		s.log.Error().Err(err).Str("filename", st.filename).Msg("attachment create failed")
		st.errs.Add(fmt.Sprintf(msgCannotStoreFormat, err.Error()))
	case !created:
		st.errs.Add(MsgNotSaved)
	default:
		st.attachment = &a
	}
	return nil
}

// Уведомление: побочный эффект: его сбой на результат загрузки не влияет.
func (s *Service) notify(ctx context.Context, a domain.Attachment) {
	if s.notifier == nil || !s.notifier.IsEventEnabled(domain.EventFileAdded) {
		return
	}
	if err := s.notifier.SendAttachmentsAdded(ctx, []domain.Attachment{a}); err != nil {
		s.log.Warn().Err(err).Str("attachment_id", a.ID.String()).Msg("file_added notification failed")
	}
}
