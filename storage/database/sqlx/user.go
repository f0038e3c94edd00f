package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/aredu/arcportal/core/user"
)

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

type userRow struct {
	UID               string     `db:"uid"`
	Email             string     `db:"email"`
	DisplayName       string     `db:"display_name"`
	Role              string     `db:"role"`
	PhotoURL          string     `db:"photo_url"`
	ProfileCompletion int        `db:"profile_completion"`
	PasswordHash      null.Bytes `db:"password_hash"`
	CreatedAt         int64      `db:"created_at"`
}

func (r userRow) toUser() user.User {
	return user.User{
		UID:               r.UID,
		Email:             r.Email,
		DisplayName:       r.DisplayName,
		Role:              r.Role,
		PhotoURL:          r.PhotoURL,
		ProfileCompletion: r.ProfileCompletion,
		PasswordHash:      r.PasswordHash.Bytes,
		CreatedAt:         r.CreatedAt,
	}
}

const userCols = `uid, email, display_name, role, photo_url, profile_completion, password_hash, created_at`

func (repo *userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...user.User) error {
	query := `SELECT COUNT(*) FROM "user" WHERE email = $1`
	args := []interface{}{email}
	if len(excludedUsers) > 0 {
		uids := make([]string, 0, len(excludedUsers))
		for _, usr := range excludedUsers {
			uids = append(uids, usr.UID)
		}
		q, qargs, err := sqlx.In(`SELECT COUNT(*) FROM "user" WHERE email = ? AND uid NOT IN (?)`, email, uids)
		if err != nil {
			return errors.Wrap(err, "building uniqueness query")
		}
		query, args = repo.db.Rebind(q), qargs
	}

	var count int
	if err := repo.db.GetContext(ctx, &count, query, args...); err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if count > 0 {
		return user.ErrEmailExists
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	if usr.UID == "" {
		usr.UID = uuid.New().String()
	}
	query := `INSERT INTO "user" (` + userCols + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := repo.db.ExecContext(ctx, query,
		usr.UID, usr.Email, usr.DisplayName, usr.Role, usr.PhotoURL,
		usr.ProfileCompletion, null.BytesFrom(usr.PasswordHash), usr.CreatedAt,
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "creating user")
	}
	return usr, nil
}

func (repo *userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	var rows []userRow
	query := `SELECT ` + userCols + ` FROM "user" ORDER BY created_at DESC`
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return rowsToUsers(rows), nil
}

func (repo *userRepository) GetUserByUID(ctx context.Context, uid string) (user.User, error) {
	var row userRow
	query := `SELECT ` + userCols + ` FROM "user" WHERE uid = $1`
	if err := repo.db.GetContext(ctx, &row, query, uid); err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "getting user")
	}
	return row.toUser(), nil
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var row userRow
	query := `SELECT ` + userCols + ` FROM "user" WHERE email = $1`
	if err := repo.db.GetContext(ctx, &row, query, email); err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "getting user by email")
	}
	return row.toUser(), nil
}

func (repo *userRepository) FilterUsers(ctx context.Context, filter user.QueryFilter) ([]user.User, error) {
	query := `SELECT ` + userCols + ` FROM "user" WHERE 1=1`
	var args []interface{}
	if filter.Role != "" {
		args = append(args, filter.Role)
		query += ` AND role = $1`
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		if len(args) == 1 {
			query += ` AND (display_name ILIKE $1 OR email ILIKE $1)`
		} else {
			query += ` AND (display_name ILIKE $2 OR email ILIKE $2)`
		}
	}
	query += ` ORDER BY created_at DESC`

	var rows []userRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering users")
	}
	return rowsToUsers(rows), nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	// only overwrite set fields
	query := `
		UPDATE "user"
		SET display_name       = COALESCE(NULLIF($2, ''), display_name),
		    photo_url          = COALESCE(NULLIF($3, ''), photo_url),
		    password_hash      = COALESCE($4, password_hash),
		    profile_completion = CASE WHEN $5 > 0 THEN $5 ELSE profile_completion END
		WHERE uid = $1`
	var hash interface{}
	if usr.PasswordHash != nil {
		hash = usr.PasswordHash
	}
	res, err := repo.db.ExecContext(ctx, query, usr.UID, usr.DisplayName, usr.PhotoURL, hash, usr.ProfileCompletion)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.GetUserByUID(ctx, usr.UID)
}

func (repo *userRepository) SetUserRole(ctx context.Context, uid, role string) (user.User, error) {
	res, err := repo.db.ExecContext(ctx, `UPDATE "user" SET role = $2 WHERE uid = $1`, uid, role)
	if err != nil {
		return user.User{}, errors.Wrap(err, "setting user role")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.GetUserByUID(ctx, uid)
}

func (repo *userRepository) DeleteUser(ctx context.Context, uid string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM "user" WHERE uid = $1`, uid)
	if err != nil {
		return errors.Wrap(err, "deleting user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.ErrNotFound
	}
	return nil
}

func rowsToUsers(rows []userRow) []user.User {
	users := make([]user.User, 0, len(rows))
	for _, r := range rows {
		users = append(users, r.toUser())
	}
	return users
}
