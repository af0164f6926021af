// Package util contains any functions used across the application that don't match
// any other package
package util

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandStr returns a random alphanumeric string of length n. It's used for
// user IDs, request IDs and storage keys.
func RandStr(n int) (string, error) {
	return gonanoid.Generate(charset, n)
}

// MustRandStr is RandStr for places that can't handle an error, like middleware.
// It only panics if the system random source is broken.
func MustRandStr(n int) string {
	return gonanoid.MustGenerate(charset, n)
}
