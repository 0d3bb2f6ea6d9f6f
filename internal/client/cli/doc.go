// Package cli provides the interactive GameShelf command-line client.
//
// It wires configuration and the HTTP API client into a small REPL:
//   - register / login / logout / deleteme / whoami
//   - games (list the shelf) and addgame
//   - setcover / cover (upload or fetch a cover image via presigned URLs)
//
// A background watcher pings the server and shows online or offline in the
// prompt. The REPL is started via App.Run(ctx), which blocks until the user
// exits or stdin is closed.
package cli
