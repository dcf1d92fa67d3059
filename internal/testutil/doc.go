// Package testutil provides fixtures shared by the test suites: temporary
// configuration trees, a captured logger and recording extensions.
package testutil
