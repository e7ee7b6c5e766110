// Package testutil provides test harness helpers built on the component
// lifecycle.
//
//	func TestHandler(t *testing.T) {
//	    db := testutil.SQLite(t, &patient.Patient{}, &note.Note{})
//	    srv := servertest.NewComponent()
//	    testutil.T(t).Setup(srv)
//	}
//
// Components passed to Setup are started in order and stopped in reverse
// order when the test ends.
package testutil
