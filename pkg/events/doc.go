// Package events carries domain events published by the form controller so
// observers (logging, metrics, front ends) can react to transitions without
// the controller depending on them.
package events
