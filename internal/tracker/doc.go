// Package tracker defines the domain types and collaborator interfaces shared by
// the legislation tracker's collector, renderer, and output subsystems.
package tracker
