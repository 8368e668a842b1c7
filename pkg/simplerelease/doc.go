// Package simplerelease implements a release ingestion and lifecycle
// catalog for a music label: artists upload one audio file and one cover
// image with metadata, owners edit their submissions while pending, and
// administrators review, search, page through, and approve or reject them.
//
// The package keeps a filesystem (or S3) blob store and a relational
// catalog consistent with best-effort sequencing: artifacts are validated
// (size, extension whitelist, and content sniffed from leading bytes),
// written under collision-resistant names, and only then recorded; if the
// catalog write fails, every artifact written in the same operation is
// deleted again. There is no transaction spanning both stores, so a crash
// between the two steps can orphan files on disk; that risk is accepted
// rather than masked.
//
// Construct a Service with New and the functional options:
//
//	svc, err := simplerelease.New(
//		simplerelease.WithRepository(memory.New()),
//		simplerelease.WithBlobStore(simplerelease.ArtifactCoverArt, coverStore),
//		simplerelease.WithBlobStore(simplerelease.ArtifactAudio, audioStore),
//	)
//
// Repositories live in repo/ (memory, postgres) and blob stores in
// storage/ (fs, memory, s3).
package simplerelease
