// Package pagination provides sequential cursor-based collection for
// paginated substack endpoints.
//
// The platform exposes two cursor styles: a zero-based page number (category
// listings) and a zero-based offset that advances by a fixed page size
// (post archives). Neither reports a total count, so end-of-data has to be
// inferred from each page: an explicit error marker, a missing "more" flag,
// an empty page, or a page whose last item repeats the previous page's.
//
// Example usage:
//
//	cursor := pagination.Cursor{Start: 0, End: pagination.Unbounded, Step: 10}
//	slugs, err := pagination.Collect(ctx, cursor, fetchArchivePage, projectSlug,
//		pagination.StopOnEmpty[Post](),
//		pagination.StopOnRepeatedLastID(postID),
//	)
//
// Collection:
//   - Fetches one page at a time, in cursor order
//   - Evaluates stop rules before appending the page
//   - Preserves platform order; no sorting, no global de-duplication
//   - Discards everything collected so far on the first error
package pagination
