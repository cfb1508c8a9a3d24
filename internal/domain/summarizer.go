// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import "context"

// Capability is the result of probing a summarization backend at startup.
// Instead of discovering mid-pipeline that a backend is missing, the service
// checks once and records why a backend cannot serve.
type Capability struct {
	Available bool
	Reason    string
}

// Available returns a capability for a backend that answered its probe.
func Available() Capability {
	return Capability{Available: true}
}

// Unavailable returns a capability for a backend that cannot serve, with the
// probe failure reason for logs and status reporting.
func Unavailable(reason string) Capability {
	return Capability{Available: false, Reason: reason}
}

// Summarizer condenses a block of transcript text into a short summary.
// Implementations are network-backed; SummarizeText must respect the
// context deadline.
type Summarizer interface {
	// SummarizeText returns a condensed summary of the given text. The word
	// hints bound the target summary length; implementations may treat them
	// as advisory.
	SummarizeText(ctx context.Context, text string, minWords, maxWords int) (string, error)
	// Probe checks whether the backend can serve requests right now.
	Probe(ctx context.Context) Capability
}
