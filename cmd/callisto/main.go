// Callisto is a reactive validation engine for tree-shaped data models.
//
// The library tracks validation state for object graphs: debounced sync
// rules, coalescing async rules, and nested validator composition, with
// an audit journal of every handler run.
//
// The callisto command manages the audit journal:
//
//	# Show version information
//	callisto version
//
//	# Query journaled validation runs
//	callisto journal query --subject "*main.signupForm" --invalid
//
//	# Prune old journal records once
//	callisto journal prune
//
//	# Run scheduled pruning until interrupted
//	callisto journal prune --daemon
package main

func main() {
	Execute()
}
