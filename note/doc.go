// Package note implements clinical note ingestion.
//
// A note is submitted as text or as an audio recording. Audio is validated,
// stored, and transcribed; the resulting text is summarized into a SOAP note
// and persisted together with the inputs:
//
//	validate -> lookup patient -> [check audio -> upload -> transcribe] -> summarize -> persist
//
// The Pipeline owns that sequence and depends only on narrow interfaces, so
// each collaborator can be replaced in tests. Handler exposes it over HTTP.
package note
