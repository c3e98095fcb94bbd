// Package hierarchy defines the production context model.
//
// A context is a point in the studio → project → category → entity
// hierarchy. Fields are filled left to right: a context with a category
// but no project is malformed. The zero Context is the studio level and
// is always valid.
//
// Scope carries the optional step/software filters that narrow which
// package assignments apply. An empty scope field is a wildcard on the
// stored side: an assignment stored without a step applies to every
// requested step.
package hierarchy
