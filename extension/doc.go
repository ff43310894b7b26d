// Package extension holds the registry of payload data types contributed by
// concrete pipeline services. The core never depends on those types directly;
// it only needs them to convert snapshot data back into typed values.
package extension
