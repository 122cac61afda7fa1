package directory

import (
	"context"
	"strings"

	"github.com/dropDatabas3/dirportal/internal/domain/repository"
	"github.com/dropDatabas3/dirportal/internal/observability/logger"
	"go.uber.org/zap"
)

// Authenticate valida username/password contra el store.
// Toda falla se reporta como "Invalid credentials."; el log distingue
// credenciales rechazadas (debug) de fallas del store (error).
func (s *service) Authenticate(ctx context.Context, username, password, domain string) (*User, error) {
	log := opLogger(ctx, "Authenticate").With(logger.Username(username), logger.Domain(domain))
	return s.authenticate(ctx, log, username, password, domain)
}

func (s *service) authenticate(ctx context.Context, log *zap.Logger, username, password, domain string) (*User, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		log.Debug("missing username or password")
		return nil, clientUsage(MsgInvalidCredentials)
	}

	is, err := s.store(log)
	if err != nil {
		return nil, infrastructure(MsgInvalidCredentials)
	}

	actx, err := is.Authenticate(ctx, s.usernameClaim(username),
		[]repository.Credential{repository.PasswordCredential(password)}, domain)
	switch {
	case repository.IsAuthenticationFailure(err):
		log.Debug(MsgInvalidCredentials, logger.Err(err))
		return nil, clientUsage(MsgInvalidCredentials)
	case err != nil:
		log.Error("failed to authenticate user", logger.Err(err))
		return nil, infrastructure(MsgInvalidCredentials)
	case actx == nil || !actx.Authenticated || actx.User == nil:
		log.Debug("store did not authenticate user")
		return nil, clientUsage(MsgInvalidCredentials)
	}

	// El store no devuelve el username; se re-adjunta el del caller.
	return &User{
		Username:   username,
		UserID:     actx.User.UniqueUserID,
		DomainName: actx.User.DomainName,
	}, nil
}

// UpdatePassword re-autentica con la contraseña vieja y recién entonces
// reemplaza la credencial. Los errores de la re-autenticación se propagan
// sin cambios.
//
// Gate y mutación se serializan por usuario resuelto dentro del proceso:
// la primera autenticación solo identifica al usuario y la contraseña vieja
// se vuelve a verificar con el lock tomado. Entre procesos no hay garantía.
func (s *service) UpdatePassword(ctx context.Context, username, oldPassword, newPassword, domain string) error {
	log := opLogger(ctx, "UpdatePassword").With(logger.Username(username), logger.Domain(domain))

	if newPassword == "" {
		return clientUsage(MsgMissingCredentials)
	}

	u, err := s.authenticate(ctx, log, username, oldPassword, domain)
	if err != nil {
		return err
	}
	log = log.With(logger.UserID(u.UserID))

	unlock := s.locks.Lock(u.UserID)
	defer unlock()

	if u, err = s.authenticate(ctx, log, username, oldPassword, domain); err != nil {
		return err
	}

	is, err := s.store(log)
	if err != nil {
		return err
	}
	err = is.UpdateUserCredentials(ctx, u.UserID,
		[]repository.Credential{repository.PasswordCredential(newPassword)})
	if err != nil {
		return storeFailure(log, err, MsgUpdatePasswordFailed)
	}
	log.Info("user password updated")
	return nil
}
