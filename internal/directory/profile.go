package directory

import (
	"context"
	"strings"

	"github.com/dropDatabas3/dirportal/internal/domain/repository"
	"github.com/dropDatabas3/dirportal/internal/observability/logger"
)

// UpdateUserProfile envía los claims al store. Un mapa vacío no hace nada;
// las entradas con URI vacío se descartan.
func (s *service) UpdateUserProfile(ctx context.Context, uniqueUserID string, claims map[string]string) error {
	if len(claims) == 0 {
		return nil
	}
	log := opLogger(ctx, "UpdateUserProfile").With(logger.UserID(uniqueUserID))

	is, err := s.store(log)
	if err != nil {
		return err
	}
	if err := is.UpdateUserClaims(ctx, uniqueUserID, s.buildClaims(claims, true)); err != nil {
		return storeFailure(log, err, MsgUpdateProfileFailed)
	}
	return nil
}

// GetClaimsOfUser devuelve los claims pedidos. Sin claims pedidos devuelve
// un slice vacío sin consultar al store.
func (s *service) GetClaimsOfUser(ctx context.Context, uniqueUserID string, claimURIs []string) ([]repository.Claim, error) {
	if strings.TrimSpace(uniqueUserID) == "" {
		return nil, clientUsage(MsgInvalidUserID)
	}
	if len(claimURIs) == 0 {
		return []repository.Claim{}, nil
	}
	log := opLogger(ctx, "GetClaimsOfUser").With(logger.UserID(uniqueUserID))

	is, err := s.store(log)
	if err != nil {
		return nil, err
	}
	metas := make([]repository.MetaClaim, 0, len(claimURIs))
	for _, uri := range claimURIs {
		metas = append(metas, s.metaClaim(uri))
	}
	claims, err := is.GetClaimsOfUser(ctx, uniqueUserID, metas)
	if err != nil {
		return nil, storeFailure(log, err, MsgGetClaimsFailed)
	}
	if claims == nil {
		claims = []repository.Claim{}
	}
	return claims, nil
}
