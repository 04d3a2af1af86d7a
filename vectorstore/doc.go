// Package vectorstore defines the canonical vector storage contract.
//
// The indexes never copy vector payloads: they reference vectors by
// core.VectorID and call back into a Store on demand. Vector contents are
// immutable for the lifetime of an index built on top of the store.
package vectorstore
