// Package model defines the typed form descriptors shared by the registry,
// validation engine, controller, and renderers. A FormSchema is an ordered
// list of Field descriptors keyed by its form-type name. Raw user input enters
// the system through ParseValue, which checks it against the descriptor kind
// and produces a tagged Value; the editing Buffer only ever stores such values.
package model
