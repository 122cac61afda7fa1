package directory

import (
	"sort"
	"strings"

	"github.com/dropDatabas3/dirportal/internal/domain/repository"
)

// sortedKeys ordena las claves para que los claims enviados al store
// sean deterministas. El orden no tiene significado para el store.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// buildClaims convierte un mapa uri → valor en claims del dialecto raíz.
// Con skipBlank, descarta las entradas cuyo URI está vacío.
func (s *service) buildClaims(m map[string]string, skipBlank bool) []repository.Claim {
	claims := make([]repository.Claim, 0, len(m))
	for _, uri := range sortedKeys(m) {
		if skipBlank && strings.TrimSpace(uri) == "" {
			continue
		}
		claims = append(claims, repository.Claim{
			DialectURI: s.claims.DialectURI,
			ClaimURI:   uri,
			Value:      m[uri],
		})
	}
	return claims
}

// buildCredentials convierte cada valor del mapa en un desafío de contraseña.
func buildCredentials(m map[string]string) []repository.Credential {
	creds := make([]repository.Credential, 0, len(m))
	for _, k := range sortedKeys(m) {
		creds = append(creds, repository.PasswordCredential(m[k]))
	}
	return creds
}

func (s *service) usernameClaim(username string) repository.Claim {
	return repository.Claim{
		DialectURI: s.claims.DialectURI,
		ClaimURI:   s.claims.UsernameClaimURI,
		Value:      username,
	}
}

func (s *service) metaClaim(uri string) repository.MetaClaim {
	return repository.MetaClaim{DialectURI: s.claims.DialectURI, ClaimURI: uri}
}
