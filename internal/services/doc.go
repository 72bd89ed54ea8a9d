// Package services defines shared utilities consumed by the fetch, analysis
// and API layers.
//
// It carries the context helpers that stamp track identifiers and request
// correlation IDs for logging, plus the structured error markers and the Wrap
// helper used to classify failures before they reach an HTTP response or a
// CLI exit code.
package services
