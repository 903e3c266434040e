// Package schema holds the form-type registry: a fixed, ordered mapping from
// form-type name to model.FormSchema. Registries are immutable once built.
// Schemas can be declared in Go, loaded from JSON/YAML documents on an fs.FS,
// or taken from the built-in set shipped with the binary.
package schema
