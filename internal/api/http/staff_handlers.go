package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	authmw "github.com/mind-engage/instructor-dashboard/internal/auth/middleware"
)

const bcryptCost = 12

var validate = validator.New()

type staffRow struct {
	ID       string `json:"id" validate:"required"`
	Username string `json:"username" validate:"required"`
	Role     string `json:"role" validate:"omitempty,oneof=instructor tutor admin"`
	Password string `json:"password,omitempty" validate:"omitempty,min=8"`
}

// POST /staff  [ {id, username, role, password}, ... ]
func BulkUpsertStaffHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rows []staffRow
		if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
			http.Error(w, "expected JSON array", http.StatusBadRequest)
			return
		}
		for i := range rows {
			if err := validate.Struct(rows[i]); err != nil {
				http.Error(w, "row "+rows[i].Username+": "+err.Error(), http.StatusBadRequest)
				return
			}
		}
		ins, upd, err := upsertStaff(r.Context(), db, rows)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string]any{"inserted": ins, "updated": upd})
	}
}

// GET /staff?role=...
func ListStaffHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := `SELECT id,username,role FROM users`
		var args []any
		if role := strings.TrimSpace(r.URL.Query().Get("role")); role != "" {
			q += ` WHERE role=$1`
			args = append(args, role)
		}
		rows, err := db.QueryContext(r.Context(), q+` ORDER BY username`, args...)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		defer rows.Close()
		out := []staffRow{}
		for rows.Next() {
			var s staffRow
			if err := rows.Scan(&s.ID, &s.Username, &s.Role); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			out = append(out, s)
		}
		writeJSON(w, out)
	}
}

func upsertStaff(ctx context.Context, db *sql.DB, rows []staffRow) (inserted, updated int, err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	for _, r := range rows {
		if r.Role == "" {
			r.Role = "instructor"
		}
		var phash string
		if r.Password != "" {
			b, e := bcrypt.GenerateFromPassword([]byte(r.Password), bcryptCost)
			if e != nil {
				return inserted, updated, e
			}
			phash = string(b)
		}

		var exists bool
		if err = tx.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id=$1`, r.ID).Scan(new(int)); err == nil {
			exists = true
		} else if !errors.Is(err, sql.ErrNoRows) {
			return inserted, updated, err
		}
		switch {
		case exists && phash != "":
			_, err = tx.ExecContext(ctx, `UPDATE users SET username=$1, role=$2, password_hash=$3 WHERE id=$4`,
				r.Username, r.Role, phash, r.ID)
			updated++
		case exists:
			_, err = tx.ExecContext(ctx, `UPDATE users SET username=$1, role=$2 WHERE id=$3`,
				r.Username, r.Role, r.ID)
			updated++
		case phash == "":
			err = errors.New("password required for new user: " + r.Username)
		default:
			_, err = tx.ExecContext(ctx, `INSERT INTO users (id, username, password_hash, role) VALUES ($1,$2,$3,$4)`,
				r.ID, r.Username, phash, r.Role)
			inserted++
		}
		if err != nil {
			return inserted, updated, err
		}
	}
	return
}

type changePasswordReq struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// POST /staff/change-password
func ChangePasswordHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := authmw.SubjectFromContext(r.Context())
		if sub == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var req changePasswordReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var id, storedHash string
		err := db.QueryRowContext(r.Context(), `SELECT id, password_hash FROM users WHERE id=$1 OR username=$1`, sub).
			Scan(&id, &storedHash)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				http.Error(w, "user not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(req.OldPassword)) != nil {
			http.Error(w, "incorrect old password", http.StatusForbidden)
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if _, err := db.ExecContext(r.Context(), `UPDATE users SET password_hash=$1 WHERE id=$2`, string(hash), id); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
