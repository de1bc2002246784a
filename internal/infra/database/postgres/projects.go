package postgres

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/EgorLis/infdot-upload/internal/domain"
)

func (r *PGRepo) ProjectByIdentifier(ctx context.Context, identifier string) (domain.Project, error) {
	q := r.qb().Select("id", "identifier", "name").
		From(r.table("projects")).
		Where(sq.Eq{"identifier": identifier})

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return domain.Project{}, err
	}
	r.logSQL("ProjectByIdentifier", sqlStr, args)

	var p domain.Project
	if err := r.pool.QueryRow(ctx, sqlStr, args...).Scan(&p.ID, &p.Identifier, &p.Name); err != nil {
		return domain.Project{}, notFound(err)
	}
	return p, nil
}

func (r *PGRepo) VersionsOfProject(ctx context.Context, id domain.ProjectID) ([]domain.Version, error) {
	q := r.qb().Select("id", "project_id", "name").
		From(r.table("versions")).
		Where(sq.Eq{"project_id": id}).
		OrderBy("name ASC")

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	r.logSQL("VersionsOfProject", sqlStr, args)

	start := time.Now()
	rows, err := r.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		r.logger.Error().Err(err).Str("op", "VersionsOfProject").Msg("query failed")
		return nil, err
	}
	defer rows.Close()

	var out []domain.Version
	for rows.Next() {
		var v domain.Version
		if err := rows.Scan(&v.ID, &v.ProjectID, &v.Name); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	r.logger.Debug().Str("op", "VersionsOfProject").Int("count", len(out)).Dur("took", time.Since(start)).Msg("ok")
	return out, nil
}

// Роли пользователя в проекте через member_roles
func (r *PGRepo) RolesForProject(ctx context.Context, user domain.UserID, project domain.ProjectID) ([]domain.Role, error) {
	q := r.qb().Select("ro.id", "ro.name", "ro.permissions").
		From(r.table("member_roles") + " m").
		Join(r.table("roles") + " ro ON ro.id = m.role_id").
		Where(sq.Eq{"m.user_id": user}).
		Where(sq.Eq{"m.project_id": project}).
		OrderBy("ro.name ASC")

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	r.logSQL("RolesForProject", sqlStr, args)

	rows, err := r.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		r.logger.Error().Err(err).Str("op", "RolesForProject").Msg("query failed")
		return nil, err
	}
	defer rows.Close()

	var out []domain.Role
	for rows.Next() {
		var (
			role  domain.Role
			perms []string
		)
		if err := rows.Scan(&role.ID, &role.Name, &perms); err != nil {
			return nil, err
		}
		for _, p := range perms {
			role.Permissions = append(role.Permissions, domain.Permission(p))
		}
		out = append(out, role)
	}
	return out, rows.Err()
}
