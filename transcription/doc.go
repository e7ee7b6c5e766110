// Package transcription defines the speech-to-text contract used by the
// note pipeline. The whisper subpackage implements it against a Whisper ASR
// web service.
package transcription
