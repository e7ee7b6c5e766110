// Package storage provides object storage for recorded audio.
//
// Backends implement Storage and register a factory under their provider
// name: s3 (Amazon S3 and S3-compatible services), local (filesystem) and
// memory (process-local, for tests and demos). Import the backend package
// for its side effect before calling New.
//
// AudioStore sits on top of a backend and speaks in locators of the form
// {scheme}://{bucket}/{key}, which is what gets persisted with a note.
package storage
