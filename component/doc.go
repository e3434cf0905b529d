// Package component defines lifecycle-managed parts of the service and a
// registry that starts them in order and stops them in reverse.
//
//   - Component: Start, Stop and Health
//   - Describable: one line for the startup summary
//   - RouteProvider: HTTP routes for the startup summary
package component
