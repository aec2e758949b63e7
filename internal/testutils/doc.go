// Package testutils contains helpers shared by the tests of several packages.
package testutils
