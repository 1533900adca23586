// Package server provides HTTP routing, middleware, and the automation API handlers.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Automation API
//
// [AutomationHandler] exposes the step-driven batch job protocol consumed by the
// dashboard's polling client:
//
//   - GET /automation/actions lists the available actions and their options
//   - POST /automation/execute configures an action and starts a job
//   - GET /automation/step advances the current job by one unit of work
//   - POST /automation/teardown aborts the current job
//
// Each step response carries the job's progress counters, a status code and
// display log lines; the client repeats step calls, pacing itself with the
// action's advertised cooldown, until a terminal status arrives.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
