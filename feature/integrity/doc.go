// Package integrity exposes the integrity model of the replicated collections.
//
// The Service combines the store, the reconciliation engine, the pillar collector and
// the storage health checks behind one API. Handler maps it onto HTTP.
//
// # HTTP Endpoints
//
//   - GET/POST /integrity/collections : List or register collections.
//   - DELETE /integrity/collections/{collection} : Remove a collection.
//   - POST /integrity/collections/{collection}/pillars/{pillar}/listing : Ingest a file listing.
//   - POST /integrity/collections/{collection}/pillars/{pillar}/checksums : Ingest a checksum report.
//   - GET /integrity/collections/{collection}/issues/... : Missing files, missing checksums,
//     inconsistent checksums and files with missing copies.
//   - POST /integrity/collections/{collection}/sweep : Begin a full listing sweep.
//   - POST /integrity/collections/{collection}/sweep/conclude : Conclude it.
//   - POST /integrity/collections/{collection}/reconcile : Reconcile checksums.
//   - POST /integrity/collections/{collection}/audit : Produce a report (supports ?export=true).
//   - POST /integrity/collections/{collection}/votes : Checksum vote (supports ?confirm=true&dry_run=true).
//   - POST /integrity/collections/{collection}/collect : Run a collection cycle over the pillars.
//   - GET /integrity/schema : Check the store schema.
//   - GET /integrity/storage : Check the bucket and pillar locations (supports ?fix=true).
//
// Errors are returned as {"error": "..."} with 404 for unknown collections, 400 for
// unknown pillars and invalid arguments, 409 for conflicting collections and 503 when
// the database, storage or pillars are not configured.
package integrity
