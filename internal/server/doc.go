// Package server provides HTTP routing, middleware, and handlers for the playlist pipeline.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
// Middleware is captured at registration time, so routes registered before a
// middleware is added are not wrapped by it; [NewRouter] relies on this to
// exempt the health route from owner authentication.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # API Handler
//
// [APIHandler] serves the pipeline endpoints:
//
//   - POST /playlists/generate turns a prompt into candidate tracks
//   - POST /playlists/verify reconciles candidates against the catalog
//   - POST /playlists and the /playlists/{id} methods manage drafts
//   - POST /playlists/build publishes a draft to the provider
//   - GET /builds lists the caller's build attempts
//
// Callers identify themselves with the X-Owner-ID header; [RequireOwner]
// rejects requests without it. Errors from the pipeline map onto HTTP status
// codes through the shared error taxonomy (validation 400, ownership 403,
// missing 404, lifecycle conflicts 409, upstream failures 502/503).
//
// # OAuth Callback Handler
//
// OAuthHandler implements the OAuth2 authorization code callback flow.
//
// The handler validates the state parameter (CSRF protection), exchanges the authorization code for tokens,
// and sends the result through a channel.
//
// It only processes one callback to prevent replay attacks.
//
// When the user runs authentication commands, a temporary HTTP server starts on localhost:3000, handles the callback,
// and shuts down after receiving the OAuth token.
package server
