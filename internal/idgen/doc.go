// Package idgen centralises run identifier generation so that tests can
// substitute a deterministic implementation.
package idgen
