// Package pillar models the storage sites that report file listings and checksums.
//
// A pillar is one of two variants, chosen when it is constructed:
//
//   - A full pillar holds the files themselves, as objects under a prefix of an
//     S3-compatible bucket. It lists them and computes checksums by streaming them.
//   - A checksum pillar holds no files, only a manifest of precomputed checksums in
//     md5sum format. It can list file ids and report the manifest checksums, but any
//     request needing file content, or a checksum spec other than the manifest's,
//     fails with ErrUnsupported.
//
// Both satisfy Model, so the Collector treats them the same way: it pulls listings
// and checksums from every pillar of a collection concurrently and feeds them to an
// Ingester. RunCycle wraps a collection in the full mark/collect/sweep/reconcile cycle.
//
// # Configuration
//
// Pillars are declared in one string, one definition per pillar separated by ";":
//
//	p1=full:books/;p2=checksum:manifests/p2.md5
//
// A full pillar names the object prefix of its files; a checksum pillar names the
// object holding its manifest. Both live in the configured storage bucket.
package pillar
