// Gridcheck validates, filters and lints grid data offline.
//
// It runs the same engine as the HTTP server against CSV files and
// clipboard text, using the built-in grids plus any schema files given
// with --schema.
//
// Usage:
//
//	# Validate a CSV export against a grid
//	gridcheck validate --grid ns_customers customers.csv
//
//	# Load schemas from a directory and report as JSON
//	gridcheck --schema ./grids validate --grid orders --format json orders.csv
//
//	# Keep rows where amount > 100 and state is CA or NY
//	gridcheck filter --grid orders --where amount:greaterThan:100 --in state=CA,NY orders.csv
//
//	# Parse clipboard text into rows
//	pbpaste | gridcheck paste --grid orders --start sku
//
//	# Check schemas for broken references
//	gridcheck --schema ./grids lint
package main

func main() {
	Execute()
}
