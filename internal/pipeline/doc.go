// Package pipeline owns the canonical processing-step order for SlideSpeaker
// tasks, sorting of arbitrary step maps into that order, and synthesis of the
// expected step sequence when the backend reports no steps at all.
package pipeline
