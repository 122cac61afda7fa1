// Package migrations embebe las migraciones SQL del identity store Postgres.
package migrations

import "embed"

// FS contiene las migraciones en formato {version}_{name}.sql.
//
//go:embed *.sql
var FS embed.FS

// Dir es el directorio dentro de FS donde viven las migraciones.
const Dir = "."
