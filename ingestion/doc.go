// Package ingestion orchestrates the analysis of a single podcast episode.
//
// A Pipeline run moves through Segmenting, Extracting and Refining before it
// ends in Done. Extraction runs concurrently on a bounded worker pool and all
// segments must finish before refinement starts. Fragments are kept in
// segment order regardless of completion order.
//
// Only a segmentation failure fails a run. Every later problem degrades to an
// empty or unrefined fragment and is reported through the RunReport attached
// to the result and through any registered Monitor.
package ingestion
