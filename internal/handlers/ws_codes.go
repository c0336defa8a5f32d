// internal/handlers/ws_codes.go
package handlers

// Application close codes, in the 3000-3999 range reserved for them.
const (
	BadSubprotocolError = 3000 // Client connected without the dalmuti subprotocol.
)
