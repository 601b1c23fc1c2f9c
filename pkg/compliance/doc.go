// Package compliance reconciles compliance labels against the fixed framework
// vocabulary used across archwise.
//
// Labels arrive from two places: wizard checkboxes, which already use canonical
// identifiers, and LLM recommendations, whose casing and phrasing are not
// controlled ("PCI DSS", "pci", "PCI"). The Resolver folds both into canonical
// identifiers, merges in the frameworks an industry mandates and drops
// regional-privacy frameworks for industries that are not exempt from that
// rule.
//
// Everything in this package is a pure function of its inputs. The vocabulary,
// alias and industry tables are built once at init and never mutated, and a
// Resolver is immutable after construction, so it can be shared freely across
// goroutines. No operation returns an error: malformed input has no effect.
package compliance
