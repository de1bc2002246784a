package postgres

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/EgorLis/infdot-upload/internal/domain"
)

var attachmentColumns = []string{
	"id", "version_id", "author_id", "filename", "description", "content_type",
	"size_bytes", "content_sha256", "storage_key", "created_at",
}

func (r *PGRepo) AttachmentsOfVersion(ctx context.Context, id domain.VersionID) ([]domain.Attachment, error) {
	q := r.qb().Select(attachmentColumns...).
		From(r.table("attachments")).
		Where(sq.Eq{"version_id": id}).
		OrderBy("created_at ASC")

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	r.logSQL("AttachmentsOfVersion", sqlStr, args)

	start := time.Now()
	rows, err := r.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		r.logger.Error().Err(err).Str("op", "AttachmentsOfVersion").Msg("query failed")
		return nil, err
	}
	defer rows.Close()

	var out []domain.Attachment
	for rows.Next() {
		var a domain.Attachment
		if err := rows.Scan(
			&a.ID, &a.VersionID, &a.AuthorID, &a.Filename, &a.Description, &a.ContentType,
			&a.SizeBytes, &a.SHA256, &a.StorageKey, &a.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	r.logger.Debug().Str("op", "AttachmentsOfVersion").Int("count", len(out)).Dur("took", time.Since(start)).Msg("ok")
	return out, nil
}

// InsertAttachment: при конфликте (version_id, filename) строка не вставляется,
// RETURNING пуст: это created=false без ошибки.
func (r *PGRepo) InsertAttachment(ctx context.Context, a domain.Attachment) (domain.Attachment, bool, error) {
	q := r.qb().Insert(r.table("attachments")).
		Columns(
			"id", "version_id", "author_id", "filename", "description",
			"content_type", "size_bytes", "content_sha256", "storage_key",
		).
		Values(
			a.ID, a.VersionID, a.AuthorID, a.Filename, a.Description,
			a.ContentType, a.SizeBytes, a.SHA256, a.StorageKey,
		).
		Suffix("ON CONFLICT (version_id, filename) DO NOTHING RETURNING created_at")

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return domain.Attachment{}, false, err
	}
	r.logSQL("InsertAttachment", sqlStr, args)

	start := time.Now()
	err = r.pool.QueryRow(ctx, sqlStr, args...).Scan(&a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		r.logger.Info().
			Str("version_id", a.VersionID.String()).
			Str("filename", a.Filename).
			Msg("attachment already exists, insert skipped")
		return domain.Attachment{}, false, nil
	}
	if err != nil {
		r.logger.Error().Err(err).Str("op", "InsertAttachment").Dur("took", time.Since(start)).Msg("insert failed")
		return domain.Attachment{}, false, err
	}
	r.logger.Debug().Str("op", "InsertAttachment").Str("id", a.ID.String()).Dur("took", time.Since(start)).Msg("ok")
	return a, true, nil
}
