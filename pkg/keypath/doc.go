// Package keypath provides dot-delimited addressing for nodes in nested
// object graphs, plus a set-valued map over those addresses.
//
// A KeyPath locates any node in an arbitrarily nested structure
// ("address.street", "items.2.price"); the Self sentinel addresses the root
// itself. MultiMap stores sets of values per path and answers both exact
// lookups and hierarchical prefix queries ("everything at or under this
// subtree") efficiently, which matters because error queries sit on the
// read path of consumers and run on every refresh.
//
// # Basic Usage
//
//	p := keypath.Join("address", "street")   // "address.street"
//	p.FirstSegment()                         // "address"
//
//	m := keypath.NewMultiMap[string]()
//	m.Set(keypath.Join("address", "street"), "required")
//	for v := range m.FindPrefix("address") {
//	    // yields "required"
//	}
//
// Freezing a MultiMap with ToImmutable makes it safe to hand out as a
// result value; later mutation attempts fail with *InvalidStateError.
package keypath
