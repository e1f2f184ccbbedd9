// Strata is a layered policy resolution engine for AI coding-agent guidance
// documents.
//
// Policy documents declare relations to one another ("supplements",
// "extends"); Strata derives the resulting precedence tiers, decides which
// documents apply to a working context, and composes their directives into
// one effective ruleset, surfacing same-tier conflicts instead of guessing.
//
// Usage:
//
//	# Validate a directory of policy documents
//	strata lint --dir documents/
//
//	# Show the derived precedence graph
//	strata graph --dir documents/
//
//	# Resolve the effective ruleset for a context
//	strata query --dir documents/ --identifier app.py --language python
//
//	# Keep the snapshot current from a file or git source
//	strata watch --config strata.yaml
//
//	# Show version information
//	strata version
package main

func main() {
	Execute()
}
