// Package model holds the vocabulary shared by every layer of the integrity service.
//
// # States
//
// FileState and ChecksumState are small fixed enumerations. Each variant carries an
// explicit integer code which is what the relational store persists; the codes are
// defined once in this package and never depend on declaration order:
//
//	FileState:     UNKNOWN=0  EXISTING=1  MISSING=2
//	ChecksumState: UNKNOWN=0  VALID=1     ERROR=2
//
// # FileInfo
//
// FileInfo is the unit of knowledge about one file at one pillar in one collection.
// Exactly one FileInfo exists per (FileID, PillarID, CollectionID).
//
// # Reports
//
// FileIDsItem and ChecksumDataItem are the entries of the listing and checksum reports
// pillars send in. They are ingested by the store in arrival order.
package model
