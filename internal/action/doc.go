// Package action is the host-side dispatcher: it resolves relayed input
// identities to configured actions and executes them off the listener's
// critical path.
//
// Ownership boundary:
// - binding table and its TOML document
// - file-watch debounce reload
// - per-type execution rules (injection fallback, focus-or-launch,
//   sudo policy block, URL delegation)
// - execution records
//
// Errors inside one action instance are terminal for that instance only;
// they never reach the listener or go back over the wire.
package action
