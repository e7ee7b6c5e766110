// Package logger provides structured logging on top of zerolog.
//
// A Logger is created once at startup from Config and handed to each
// component, which narrows it with WithComponent. Request-scoped values
// (request id, trace id) are attached through the context helpers so that
// log lines emitted deep inside the note pipeline still carry them.
//
//	logging:
//	  level: info
//	  format: json
package logger
