// Package ws provides the WebSocket transport for interactive shells.
//
// Clients send JSON frames ({"type": "execute", "session_id": ..,
// "command": ..}) and receive result frames carrying stdout, stderr and the
// exit code. "interrupt" cancels the session's running command and "ping"
// answers "pong" for keepalive.
package ws
