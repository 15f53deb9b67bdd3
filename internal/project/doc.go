// Package project resolves scalar detail fields, configuration flags, and
// step maps out of raw backend task payloads. The backend has no canonical
// payload shape, so every lookup here is a prioritized search: declarative
// path tables probed against a fixed ordering of candidate roots, with a
// bounded breadth-first key search as the fallback. Nothing in this package
// returns an error; an unresolvable field is simply empty.
package project
