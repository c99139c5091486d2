// Package mocks provides hand-written mock implementations of the
// store and service interfaces for testing. Each mock carries optional
// function fields to override behavior per test, with a map-backed
// default implementation underneath.
package mocks
