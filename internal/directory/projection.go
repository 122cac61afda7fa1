package directory

import (
	"context"
	"fmt"
	"strings"

	"github.com/dropDatabas3/dirportal/internal/domain/repository"
	"github.com/dropDatabas3/dirportal/internal/observability/logger"
)

// statusPrecedence se evalúa de arriba hacia abajo; gana el primer grupo
// al que pertenece el estado.
var statusPrecedence = []struct {
	group repository.StateGroup
	label string
}{
	{repository.GroupDisabled, StatusDisabled},
	{repository.GroupLocked, StatusLocked},
	{repository.GroupUnlocked, StatusUnlocked},
}

// statusLabel reduce un estado a una etiqueta. Sin match devuelve "".
func statusLabel(state repository.UserState) string {
	for _, p := range statusPrecedence {
		if state.IsInGroup(p.group) {
			return p.label
		}
	}
	return ""
}

// project arma un ListEntry por usuario en el orden recibido.
// Si falla cualquier usuario, se descarta el lote completo.
func (s *service) project(ctx context.Context, is repository.IdentityStore, users []repository.User) ([]ListEntry, error) {
	log := opLogger(ctx, "project")

	userMeta := []repository.MetaClaim{s.metaClaim(s.claims.UsernameClaimURI)}
	groupMeta := []repository.MetaClaim{s.metaClaim(s.claims.GroupNameClaimURI)}

	entries := make([]ListEntry, 0, len(users))
	for _, u := range users {
		entry, err := s.projectUser(ctx, is, u, userMeta, groupMeta)
		if err != nil {
			msg := fmt.Sprintf("Error while retrieving user data for user: %s", u.UniqueUserID)
			log.Error(msg, logger.UserID(u.UniqueUserID), logger.Err(err))
			return nil, infrastructure(msg)
		}
		entries = append(entries, entry)
	}
	log.Debug("users projected", logger.Count(len(entries)))
	return entries, nil
}

// groupNames resuelve el nombre visible de cada grupo del usuario, en el
// orden del store. Grupos sin nombre se omiten.
func groupNames(ctx context.Context, is repository.IdentityStore, userID string, groupMeta []repository.MetaClaim) ([]string, error) {
	groups, err := is.GetGroupsOfUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("groups of user: %w", err)
	}

	names := make([]string, 0, len(groups))
	for _, g := range groups {
		claims, err := is.GetClaimsOfGroup(ctx, g.UniqueGroupID, groupMeta)
		if err != nil {
			return nil, fmt.Errorf("claims of group %s: %w", g.UniqueGroupID, err)
		}
		if len(claims) > 0 {
			names = append(names, claims[0].Value)
		}
	}
	return names, nil
}

// GetGroupNamesOfUser devuelve los nombres visibles de los grupos del usuario.
func (s *service) GetGroupNamesOfUser(ctx context.Context, uniqueUserID string) ([]string, error) {
	if strings.TrimSpace(uniqueUserID) == "" {
		return nil, clientUsage(MsgInvalidUserID)
	}
	log := opLogger(ctx, "GetGroupNamesOfUser").With(logger.UserID(uniqueUserID))

	is, err := s.store(log)
	if err != nil {
		return nil, err
	}
	names, err := groupNames(ctx, is, uniqueUserID, []repository.MetaClaim{s.metaClaim(s.claims.GroupNameClaimURI)})
	if err != nil {
		return nil, storeFailure(log, err, MsgGetGroupsFailed)
	}
	return names, nil
}

func (s *service) projectUser(ctx context.Context, is repository.IdentityStore, u repository.User, userMeta, groupMeta []repository.MetaClaim) (ListEntry, error) {
	names, err := groupNames(ctx, is, u.UniqueUserID, groupMeta)
	if err != nil {
		return ListEntry{}, err
	}

	claims, err := is.GetClaimsOfUser(ctx, u.UniqueUserID, userMeta)
	if err != nil {
		return ListEntry{}, fmt.Errorf("claims of user: %w", err)
	}
	var username string
	if len(claims) > 0 {
		username = claims[0].Value
	}

	return ListEntry{
		Username:     username,
		DomainName:   u.DomainName,
		UserUniqueID: u.UniqueUserID,
		State:        statusLabel(u.State),
		Groups:       names,
	}, nil
}
