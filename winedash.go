// Package winedash is an interactive dashboard over the UCI wine dataset.
//
// The page has four charts driven by dropdowns plus an about modal:
//
//	histogram      distribution of one feature, per class
//	scatter_chart  any feature against any other, coloured by class
//	bar_chart      mean of one feature per class
//	pie_chart      samples per class
//
// Packages:
//
//	schema    column roles and CSV auto-discovery
//	dataset   embedded wine table, external CSV and Postgres loaders
//	charts    ChartSpec builders (histogram, scatter, bar, pie) and CSV export
//	widgets   dropdown and button registry
//	layout    page composition and HTML rendering
//	reactive  input → chart bindings and per-browser sessions
//	render    ChartSpec → SVG / PNG
//	server    HTTP routes and session sweeping
//	snapshot  headless Chrome capture of the running page
//
// Run it with:
//
//	go run ./cmd/winedash
package winedash
