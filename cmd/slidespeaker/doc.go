// Command slidespeaker is the terminal console for the SlideSpeaker job
// backend: it lists, inspects, and watches processing tasks and drives the
// cancel, retry, delete, and run operations.
package main
