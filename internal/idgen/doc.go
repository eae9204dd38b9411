// Package idgen generates identifiers for loaded environments. Callers treat
// the values as opaque strings.
package idgen
