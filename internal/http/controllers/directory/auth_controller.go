package directory

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"time"

	"go.uber.org/zap"

	dir "github.com/dropDatabas3/dirportal/internal/directory"
	dto "github.com/dropDatabas3/dirportal/internal/http/dto/directory"
	httperrors "github.com/dropDatabas3/dirportal/internal/http/errors"
	"github.com/dropDatabas3/dirportal/internal/http/helpers"
	jwtx "github.com/dropDatabas3/dirportal/internal/jwt"
	"github.com/dropDatabas3/dirportal/internal/observability/logger"
)

// AuthController maneja login y cambio de password.
type AuthController struct {
	service    dir.Service
	issuer     *jwtx.Issuer
	adminGroup string
}

func NewAuthController(service dir.Service, issuer *jwtx.Issuer, adminGroup string) *AuthController {
	return &AuthController{service: service, issuer: issuer, adminGroup: adminGroup}
}

// Login maneja POST /v1/directory/auth/login
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(
		logger.Layer("controller"),
		logger.Component("directory.auth"),
		logger.Op("Login"),
	)

	var req dto.LoginRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, err)
		return
	}

	user, err := c.service.Authenticate(ctx, req.Username, req.Password, req.Domain)
	if err != nil {
		httperrors.WriteError(w, httperrors.FromAuthentication(err))
		return
	}

	admin := c.isAdmin(ctx, log, user.UserID)
	token, exp, err := c.issuer.Issue(user.UserID, user.Username, user.DomainName, admin)
	if err != nil {
		log.Error("failed to issue session", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.LoginResponse{
		User:        *user,
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(time.Until(exp).Seconds()),
	})
	log.Info("user logged in", logger.UserID(user.UserID), logger.Domain(user.DomainName), logger.Bool("admin", admin))
}

// isAdmin indica si el usuario pertenece al grupo de administración.
// Si los grupos no se pueden leer, la sesión queda sin privilegios.
func (c *AuthController) isAdmin(ctx context.Context, log *zap.Logger, userID string) bool {
	if c.adminGroup == "" {
		return false
	}
	groups, err := c.service.GetGroupNamesOfUser(ctx, userID)
	if err != nil {
		log.Warn("failed to resolve admin group, issuing regular session", logger.Err(err))
		return false
	}
	return slices.Contains(groups, c.adminGroup)
}

// UpdatePassword maneja POST /v1/directory/auth/password
func (c *AuthController) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req dto.UpdatePasswordRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, err)
		return
	}

	err := c.service.UpdatePassword(ctx, req.Username, req.OldPassword, req.NewPassword, req.Domain)
	if err != nil {
		var de *dir.Error
		if errors.As(err, &de) && de.Message == dir.MsgInvalidCredentials {
			httperrors.WriteError(w, httperrors.FromAuthentication(err))
			return
		}
		httperrors.WriteError(w, httperrors.FromDirectory(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
