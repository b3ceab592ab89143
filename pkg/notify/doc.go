// Package notify fans out created and updated derived records to interested
// consumers (UI pushes, webhooks, logs). Publishing is fire-and-forget: a
// slow or broken consumer never blocks the engine.
package notify
