// Package datfile reads Logiqx-dialect XML catalogs (DAT files) into the
// catalog entries consumed by the verification matcher.
//
// The reader streams game elements with encoding/xml so catalog size never
// dictates memory use, preserves document order as entry sequence numbers,
// and tolerates the common No-Intro habit of encoding regions in the game
// name instead of <release> elements.
package datfile
