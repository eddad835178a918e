// Package notify delivers notifications across independent channels with
// independent failure semantics. Every sender collapses its failure modes to
// a boolean; nothing in this package returns an error to the caller.
package notify

import "context"

// Channel names, also the keys of a dispatch Outcome.
const (
	ChannelPushover = "pushover"
	ChannelDesktop  = "desktop"
)

// Request is one notification to deliver. Priority follows the Pushover
// scale, -2 (silent) to 2 (emergency); the desktop channel ignores it.
type Request struct {
	Title      string
	Message    string
	Priority   int
	WorkingDir string
}

// Sender is a single notification channel. Send reports delivery success and
// must never panic or block past its own timeout; ctx carries the
// dispatcher's per-channel ceiling.
type Sender interface {
	Name() string
	Send(ctx context.Context, req Request) bool
}
