// Package assets persists library records in SQLite and owns the rules that
// keep version groups consistent.
//
// A group is one master (MasterID nil, VersionNo 1) plus every asset whose
// MasterID names it. Groups are flat: a version never points at another
// version. The Store exposes raw record CRUD and filtering, the group
// operations (CreateVersion, PromoteVersion, RemoveFromGroup, AddToGroup,
// GetAssetVersions), BulkUpdate with per-row partial failure, custom field
// tables, and maintenance checks.
//
// Every group mutation runs in one BEGIN IMMEDIATE transaction while holding
// an in-process mutex, and the library directory is guarded by a lock file so
// only one process writes at a time. A partial unique index on
// (master_id, version_no) backs the numbering rule inside the database.
// Errors are tagged with ErrNotFound, ErrInvalidState, ErrConflict, or
// ErrInvalidInput for errors.Is checks.
//
// Schema changes bump schemaVersion in schema.go; an older database is
// rejected with ErrSchemaMismatch rather than migrated.
package assets
