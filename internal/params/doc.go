// Package params holds the machine-motion parameter set sent with every
// estimation request. MachineParameters is an immutable value: edits produce
// a new value, and raw user input is coerced to a finite, non-negative number
// (0 on any parse failure) instead of being rejected.
package params
