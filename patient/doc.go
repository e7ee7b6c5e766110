// Package patient holds patient records: the gorm model, a repository over
// the database component, the read-only HTTP handlers and the demo seed.
//
// Patients are immutable once created; there is no update or delete path.
package patient
