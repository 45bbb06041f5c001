// Package ipc carries daemon control between the clipvault CLI and
// clipvaultd: a JSON-RPC server on a Unix domain socket, the matching
// client, and the wire DTOs both sides share.
package ipc
