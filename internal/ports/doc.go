// Package ports defines the interfaces (ports) that connect the application
// layer to infrastructure adapters.
//
// # Port Interfaces
//
//   - [Digester]: resolves algorithm tokens and creates hash states
//   - [Logger]: structured logging abstraction
//
// The application layer (internal/app) depends only on these interfaces.
// pkg/digest and pkg/log provide the production implementations.
package ports
