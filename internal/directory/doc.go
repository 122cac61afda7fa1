// Package directory implementa la capa de directorio que usa el portal de
// usuarios sobre un identity store externo.
//
// Cubre autenticación, cambio de contraseña, alta de usuarios, chequeos de
// existencia, actualización de claims de perfil, resolución de dominios y
// listados paginados enriquecidos con grupos y estado.
//
// El identity store se obtiene en cada operación desde un StoreProvider
// (normalmente *store.Binding), por lo que puede cambiarse en caliente.
// Si no hay store bindeado, la operación falla con un *Error de infraestructura.
//
// Errores:
//
//	KindClientUsage    → argumentos inválidos, sin llamada al store
//	KindNotFound       → usuario inexistente
//	KindInfrastructure → falla del store; el mensaje nunca incluye la causa
//
// Autenticar siempre falla con "Invalid credentials." sin importar la causa.
// Solo el nivel de log distingue credenciales malas (debug) de fallas del
// store (error).
package directory
