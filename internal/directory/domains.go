package directory

import (
	"context"

	"github.com/dropDatabas3/dirportal/internal/observability/logger"
)

// GetDomainNames devuelve los dominios conocidos por el store.
func (s *service) GetDomainNames(ctx context.Context) ([]string, error) {
	log := opLogger(ctx, "GetDomainNames")

	is, err := s.store(log)
	if err != nil {
		return nil, err
	}
	names, err := is.GetDomainNames(ctx)
	if err != nil {
		log.Error(MsgDomainNamesFailed, logger.Err(err))
		return nil, infrastructure(MsgDomainNamesFailed)
	}
	return names, nil
}

// GetPrimaryDomainName devuelve el dominio por defecto del store.
func (s *service) GetPrimaryDomainName(ctx context.Context) (string, error) {
	log := opLogger(ctx, "GetPrimaryDomainName")

	is, err := s.store(log)
	if err != nil {
		return "", err
	}
	name, err := is.GetPrimaryDomainName(ctx)
	if err != nil {
		log.Error(MsgPrimaryDomainFailed, logger.Err(err))
		return "", infrastructure(MsgPrimaryDomainFailed)
	}
	return name, nil
}
