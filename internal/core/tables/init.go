// Package tables registers the built-in grid definitions with the core
// registry. Import this package to ensure all grids are registered.
package tables

// This file exists to provide a single import point.
// Each grid file uses init() to register its grids.
