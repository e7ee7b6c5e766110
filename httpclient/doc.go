// Package httpclient is the outbound HTTP client used by the external
// service integrations.
//
// Failures are classified into typed *Error values: transport problems are
// ErrCodeConnection or ErrCodeTimeout, and non-2xx responses carry their
// status code, status text and body. Retry, when configured, re-sends the
// whole request, so request bodies are re-encoded on every attempt.
//
//	client, _ := httpclient.New(httpclient.Config{
//	    BaseURL: "http://localhost:9000",
//	    Retry:   httpclient.TransportRetryConfig(3, 2*time.Second),
//	})
//	resp, err := client.Do(ctx, httpclient.Request{
//	    Method: http.MethodPost,
//	    Path:   "/asr",
//	    Query:  map[string]string{"output": "json"},
//	    Body:   &httpclient.MultipartBody{Files: []httpclient.FileField{...}},
//	})
package httpclient
