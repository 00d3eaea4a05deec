// Package memo memoizes pure functions in bounded tables.
//
// Memo tables pair naturally with interning: once values are hash-consed,
// their Handles are small comparable keys, so a function over interned
// structures can be cached by Handle without hashing the structure again.
//
// A Table keeps two generations. Stores go to the head generation; when it
// reaches its bound the older generation is dropped and a fresh one becomes
// the head. Lookups consult both, so recently used results survive one
// rotation and memory stays bounded by twice the configured size.
//
// WARNING: only memoize pure functions. Concurrent misses on the same key
// may compute the result more than once; the last store wins.
package memo
