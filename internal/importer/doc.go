// Package importer plans batched library imports and executes them with
// verified file copies.
package importer
