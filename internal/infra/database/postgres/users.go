package postgres

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/EgorLis/infdot-upload/internal/domain"
)

var userColumns = []string{"id", "login", "pass_hash", "created_at"}

func (r *PGRepo) UserByAPIKey(ctx context.Context, key string) (domain.User, error) {
	q := r.qb().Select(userColumns...).
		From(r.table("users")).
		Where(sq.Eq{"api_key": key})
	return r.oneUser(ctx, "UserByAPIKey", q)
}

func (r *PGRepo) UserByLogin(ctx context.Context, login string) (domain.User, error) {
	q := r.qb().Select(userColumns...).
		From(r.table("users")).
		Where(sq.Eq{"login": login})
	return r.oneUser(ctx, "UserByLogin", q)
}

func (r *PGRepo) oneUser(ctx context.Context, op string, q sq.SelectBuilder) (domain.User, error) {
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return domain.User{}, err
	}
	r.logSQL(op, sqlStr, args)

	start := time.Now()
	var u domain.User
	if err := r.pool.QueryRow(ctx, sqlStr, args...).Scan(&u.ID, &u.Login, &u.PassHash, &u.CreatedAt); err != nil {
		r.logger.Debug().Err(err).Str("op", op).Dur("took", time.Since(start)).Msg("scan failed")
		return domain.User{}, notFound(err)
	}
	r.logger.Debug().Str("op", op).Str("id", u.ID.String()).Dur("took", time.Since(start)).Msg("ok")
	return u, nil
}
