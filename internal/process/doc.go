// Package process runs external programs for the bridge.
//
// The Executor spawns one child per call and waits for it; Start is the
// exception and returns as soon as the child is running. What gets spawned
// is decided by a platform.Strategy; this package only runs invocations and
// classifies what happened, so the same code serves every OS family.
//
// Classification:
//   - Spawn error (not found, permission denied) → failure with the OS error
//   - Non-zero exit → failure with captured stderr (capped at 64KB)
//   - Non-zero exit, empty stderr → success with the confirmation string
//     (the exit code is logged at warn)
//   - Exit 0 → success with a fixed confirmation string
//
// There is no timeout, no cancellation and no retry: a child started for
// launch_app usually outlives the request that asked for it.
package process
