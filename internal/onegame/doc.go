// Package onegame selects one preferred release per logical title from a
// catalog's parent/clone families (the 1G1R policy).
//
// Resolution is a pure function of the family, the configured region and
// language priorities, and the parent preference flag, so repeated runs are
// idempotent and independent of catalog iteration order.
package onegame
