// Package testutil runs a server.Server behind httptest with the full
// middleware stack, for handler tests that go through real HTTP.
//
//	srv := servertest.NewComponent()
//	handler.Register(srv.GinEngine().Group("/api"))
//	testutil.T(t).Setup(srv)
//
//	resp, _ := http.Get(srv.BaseURL() + "/api/patients")
package testutil
