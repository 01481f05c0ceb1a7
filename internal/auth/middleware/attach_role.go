package auth

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/instructor-dashboard/internal/rbac"
)

// SQLUsers reads accounts from the users table.
type SQLUsers struct{ DB *sql.DB }

func (u SQLUsers) Verify(username, password string) (string, bool) {
	var hash, role string
	err := u.DB.QueryRow(`SELECT password_hash, role FROM users WHERE username=$1`, username).Scan(&hash, &role)
	if err != nil {
		return "", false
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return "", false
	}
	return role, true
}

func (u SQLUsers) Role(ctx context.Context, sub string) (string, error) {
	var role string
	err := u.DB.QueryRowContext(ctx, `SELECT role FROM users WHERE id=$1 OR username=$1`, sub).Scan(&role)
	return role, err
}

// AttachRoleFromDB replaces the token's role with the one stored for the
// subject. allowClaimFallback=true in dev/offline; false in prod.
func AttachRoleFromDB(users SQLUsers, allowClaimFallback bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			claimRole := rbac.RoleFromContext(ctx) // set by JWTMiddleware

			role, err := users.Role(ctx, SubjectFromContext(ctx))
			switch {
			case err == nil && role != "":
				next.ServeHTTP(w, r.WithContext(rbac.WithRole(ctx, role)))
			case errors.Is(err, sql.ErrNoRows) || isUsersTableMissing(err):
				// config admin has no row
				if claimRole == "admin" || (allowClaimFallback && claimRole != "") {
					next.ServeHTTP(w, r)
					return
				}
				http.Error(w, "forbidden", http.StatusForbidden)
			default:
				if allowClaimFallback && claimRole != "" {
					next.ServeHTTP(w, r)
					return
				}
				http.Error(w, "forbidden", http.StatusForbidden)
			}
		})
	}
}

func isUsersTableMissing(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "no such table: users") || // sqlite
		strings.Contains(msg, `relation "users" does not exist`) // postgres
}
