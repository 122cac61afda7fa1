// Package repository define el contrato del identity store que consume el
// directorio y las entidades que viajan por él.
//
// El identity store es externo: persiste claims, credenciales, grupos y
// estados. El directorio nunca muta entidades directamente, solo pide
// mutaciones a través de IdentityStore.
//
// Las implementaciones concretas viven en internal/store/adapters/.
//
// Arquitectura:
//
//	┌─────────────────────────────────────────────────────┐
//	│        HTTP controllers / CLI                       │
//	└─────────────────────────────────────────────────────┘
//	                        │
//	                        ▼
//	┌─────────────────────────────────────────────────────┐
//	│        internal/directory (Service)                 │
//	└─────────────────────────────────────────────────────┘
//	                        │
//	                        ▼
//	┌─────────────────────────────────────────────────────┐
//	│        domain/repository (IdentityStore)            │
//	└─────────────────────────────────────────────────────┘
//	                        │
//	         ┌──────────────┼──────────────┐
//	         ▼              ▼              ▼
//	┌─────────────┐  ┌─────────────┐  ┌─────────────┐
//	│  adapters/  │  │  adapters/  │  │  adapters/  │
//	│     pg      │  │   memory    │  │   cached    │
//	└─────────────┘  └─────────────┘  └─────────────┘
//
// Convenciones:
//   - Context siempre es el primer parámetro
//   - El dominio se pasa explícitamente; vacío significa "lo decide el store"
//   - Errores de dominio están en errors.go
package repository
