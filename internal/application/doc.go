// Package application wires the calculator, the in-memory transaction history,
// the HTTP handlers and the server together, keeping the main package focused on
// CLI parsing and process lifecycle.
package application
