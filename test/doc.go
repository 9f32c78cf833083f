// Package test provides infrastructure and utilities for integration testing in MathVis.
//
// The test package implements a complete test environment that allows testing
// the interaction between different components while keeping every dependency
// in process. It can be used both within MathVis and by external packages
// that want to test their integration with MathVis.
//
// The package provides:
//
//   - TestEnvironment: A struct that manages a complete test setup including
//     an in-memory job registry and render queue, a real API server, a real
//     API client, and a running worker pool backed by a scripted renderer
//
//   - Mock Management: Centralized mock implementations for the render
//     pipeline so no test ever shells out to the Python toolchain
//
//   - Test Utilities: Helper functions for common testing scenarios and
//     assertions
//
// Example Usage:
//
//	func TestExample(t *testing.T) {
//	    env := test.NewTestEnvironment(t)
//	    defer env.Cleanup()
//
//	    // Use env.APIClient to make requests
//	    // Use env.Renderer to script render outcomes
//	}
//
// The test package is designed to:
//  1. Enable testing of API contracts between client and server
//  2. Provide consistent mocking of the render pipeline
//  3. Reduce test setup boilerplate
//  4. Make tests more maintainable and reliable
//  5. Support external package integration testing
package test
