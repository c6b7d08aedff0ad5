// Package textutil provides filename escaping and token helpers.
//
// EscapeFileName keeps titles readable on every filesystem bget targets:
// characters Windows reserves are swapped for their full-width look-alikes
// rather than dropped, and input is NFC-normalized so titles pasted from
// different sources produce the same path.
package textutil
