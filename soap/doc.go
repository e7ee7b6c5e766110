// Package soap turns clinical free text into a SOAP-formatted note
// (SUBJECTIVE, OBJECTIVE, ASSESSMENT, PLAN).
//
// A Summarizer either returns the canned MockNote, for development without
// an API key, or makes a single chat completion call through an llm.Provider
// selected by name from the package registry.
package soap
