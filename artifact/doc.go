// Package artifact keeps the export history: one Record per devexport run.
//
// Records live under <base>/runs/<run-id>/record.json. Records larger
// than the compression threshold are stored as record.json.gz and
// decompressed transparently on load. Run IDs start with the UTC date
// so a directory listing is already roughly chronological:
//
//	2026-10-19-V1StGXR8_Z
//
// LifecycleManager applies the retention policy used by "devexport prune":
// the newest KeepLast records are always kept, older ones are deleted
// once they exceed the retention age.
//
// Example usage:
//
//	store := artifact.NewStore(artifact.Config{BaseDir: ".devexport"})
//	rec := artifact.NewRecord("replace-all", "/abs/jars")
//	rec.Finish(artifact.StatusCompleted)
//	err := store.Save(rec)
package artifact
