// Package mocks provides mock implementations of various interfaces used in MathVis.
//
// Each mock implementation follows these principles:
//  1. Implements the same interface as the real component
//  2. Provides configurable behavior through function fields
//  3. Includes helper functions for common testing scenarios
//  4. Uses consistent naming: Mock{Interface} for the mock type
//
// Example usage:
//
//	renderer := mocks.NewMockRenderer()
//	renderer.SetRenderFn(func(_ context.Context, _ render.Request) error {
//		return errors.New("integral diverged")
//	})
package mocks
