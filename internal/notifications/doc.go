// Package notifications delivers push notifications through ntfy. Without a
// configured topic every notification is a silent no-op.
package notifications
