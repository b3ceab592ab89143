// Package server provides the HTTP listener that accepts trigger events and
// exposes the health and metrics endpoints. The event endpoint is the adapter
// boundary between gateway payloads and the engine's canonical TriggerEvent:
// payload normalization (hashtag extraction, trigger type inference) happens
// here, never inside the engine.
package server
