// Package provider defines the shape shared by swappable backends: the
// transcription service, the chat model and the summarizer. Each backend has
// a name and can report whether it is reachable, and a Registry builds the
// one named in configuration.
package provider
