package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/Advaitgaur004/Urban-ride-server/internal/model"
	"github.com/Advaitgaur004/Urban-ride-server/internal/utils"
)

// UserRepo persists application users.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = `id,username,email,phone,password_hash,role,college,address,image_url,is_active,created_at,updated_at`

// CreateInput carries the fields needed to register a user.  College,
// Address and ImageURL may be nil.
type CreateInput struct {
	Username string
	Email    string
	Phone    string
	Password string
	Role     model.Role
	College  *string
	Address  *string
	ImageURL *string
}

// Create inserts a user with a bcrypt-hashed password and returns the
// generated ID.  Duplicate email/username values are reported as
// ErrEmailExists / ErrUsernameExists.
func (r *UserRepo) Create(ctx context.Context, in CreateInput, bcryptCost int) (uint64, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	hash, err := utils.HashPassword(in.Password, bcryptCost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, phone, password_hash, role, college, address, image_url) VALUES (?,?,?,?,?,?,?,?)",
		strings.TrimSpace(in.Username), email, strings.TrimSpace(in.Phone), hash, string(in.Role),
		in.College, in.Address, in.ImageURL)
	if err != nil {
		// MySQL duplicate-key errors carry code 1062; the message names
		// the violated index so we can tell email from username.
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "1062") {
			if strings.Contains(msg, "username") {
				return 0, ErrUsernameExists
			}
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	var college, address, imageURL sql.NullString
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Phone, &u.PasswordHash, &u.Role,
		&college, &address, &imageURL, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return u, err
	}
	if college.Valid {
		u.College = &college.String
	}
	if address.Valid {
		u.Address = &address.String
	}
	if imageURL.Valid {
		u.ImageURL = &imageURL.String
	}
	return u, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE id=? LIMIT 1", id))
}

// GetByIDTx is GetByID inside an existing transaction.
func (r *UserRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.User, error) {
	return scanUser(tx.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE id=? LIMIT 1", id))
}

// List returns users ordered by id, optionally filtered by role.
func (r *UserRepo) List(ctx context.Context, role model.Role) ([]model.User, error) {
	q := "SELECT " + userCols + " FROM users"
	args := []interface{}{}
	if role != "" {
		q += " WHERE role=?"
		args = append(args, string(role))
	}
	q += " ORDER BY id"
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := make([]model.User, 0)
	for rows.Next() {
		var u model.User
		var college, address, imageURL sql.NullString
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Phone, &u.PasswordHash, &u.Role,
			&college, &address, &imageURL, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		if college.Valid {
			u.College = &college.String
		}
		if address.Valid {
			u.Address = &address.String
		}
		if imageURL.Valid {
			u.ImageURL = &imageURL.String
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateProfile updates the mutable profile fields of a user.  Nil
// pointers leave the corresponding column untouched.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, phone, college, address, imageURL *string) error {
	sets := []string{}
	args := []interface{}{}
	if phone != nil {
		sets = append(sets, "phone=?")
		args = append(args, *phone)
	}
	if college != nil {
		sets = append(sets, "college=?")
		args = append(args, *college)
	}
	if address != nil {
		sets = append(sets, "address=?")
		args = append(args, *address)
	}
	if imageURL != nil {
		sets = append(sets, "image_url=?")
		args = append(args, *imageURL)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET "+strings.Join(sets, ",")+" WHERE id=?", args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Deactivate soft-deletes a user.  Hard deletion is avoided because
// slots and participations keep historical references.
func (r *UserRepo) Deactivate(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET is_active=0 WHERE id=? AND is_active=1", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
