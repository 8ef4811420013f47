// Package plan resolves library build options into a build plan and names the
// artifact emitted for each requested module format.
//
// Resolution is pure: no logging, no retries and at most one optional stat of
// the entry file. Every failure is a *ConfigError whose Kind is one of the
// package's sentinel errors, and no partial plan or descriptor list is ever
// returned alongside an error.
//
// The output directory is a filesystem concept and the base public path is a
// URL concept. The two are normalized independently and never joined.
package plan
