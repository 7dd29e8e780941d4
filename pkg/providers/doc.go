// Package providers groups clients for model endpoints.
//
// It is organized into sub-packages:
//   - [github.com/germanamz/promptly/pkg/providers/openai]: request builders and streaming client for OpenAI-compatible chat and completion endpoints
//
// Shared HTTP plumbing lives in [github.com/germanamz/promptly/pkg/modeladapter].
package providers
