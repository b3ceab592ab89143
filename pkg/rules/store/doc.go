// Package store persists automation rules and the instance ownership map the
// permission filter consults.
//
// Rules reach the store from two directions: operator-authored YAML files
// (loaded at startup and hot-reloaded on change) and programmatic writes. In
// both cases the store boundary is where loosely-typed condition payloads are
// normalized into the typed variant and where invalid rules are rejected;
// the evaluator never sees an unvalidated rule.
package store
