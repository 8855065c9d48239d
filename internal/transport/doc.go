// Package transport provides the HTTP transport layer of the GRIP demo
// backend.
//
// # Architecture
//
// The transport package connects Grip-Sig validation with the hold,
// publish and WebSocket-over-HTTP handlers. It follows the adapter pattern
// to bridge the instruct, websocket and publisher packages with HTTP.
//
// Package structure:
//
//	internal/transport/
//	├── transport.go              # Public interfaces
//	├── errors.go                 # Transport domain errors
//	├── context.go                # Context keys and helpers
//	├── wire.go                   # Factory functions
//	├── internal/
//	│   ├── http/
//	│   │   ├── server.go         # HTTP server with graceful shutdown
//	│   │   ├── router.go         # HTTP routing
//	│   │   └── response.go       # JSON error responder
//	│   ├── middleware/
//	│   │   ├── gripsig.go        # Grip-Sig validation
//	│   │   ├── bearer.go         # Publish token check
//	│   │   ├── logging.go        # Request logging
//	│   │   └── recovery.go       # Panic recovery
//	│   └── handlers/
//	│       ├── hold.go           # Long-poll and stream holds
//	│       ├── websocket.go      # WebSocket-over-HTTP echo
//	│       ├── publish.go        # Publish to a channel
//	│       └── health.go         # Health check endpoint
//
// # Middleware Chain
//
// The middleware chain is applied in this order:
//
//  1. Recovery - catches panics and returns 500 errors
//  2. Logging - logs request details
//  3. Grip-Sig - validates the proxy signature and records the status
//  4. Proxied check - rejects direct requests on hold routes
//
// # Grip-Sig
//
// A request without Grip-Sig is a direct request. When signatures are
// required, a Grip-Sig header that does not verify is answered with:
//
//	HTTP/1.1 401 Unauthorized
//	Content-Type: application/json
//
//	{"error": "unauthorized", "message": "invalid grip signature"}
//
// # Endpoints
//
// Public endpoints:
//   - GET /health - Health check
//   - GET /metrics - Prometheus metrics
//   - POST /publish/{channel} - Publish the request body to a channel.
//     With GRIP_PUBLISH_TOKEN set it requires "Authorization: Bearer <token>";
//     without it the route is open and meant for local use only.
//
// Proxied endpoints:
//   - GET /hold/response - Long-poll hold (channel, timeout and status query parameters)
//   - GET /hold/stream - Stream hold (channel query parameter)
//   - POST /websocket - WebSocket-over-HTTP echo; subscribes on open
//
// # Context Values
//
// The Grip-Sig middleware stores its result in the request context:
//
//	status, ok := transport.SigStatusFromContext(r.Context())
//	if ok && status.IsProxied {
//		// GRIP instructions will be honored
//	}
package transport
