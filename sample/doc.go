// Package sample discovers paired-end read files and stages them into the
// raw directory of a run.
//
// A read file qualifies when its name ends in "fastq.gz" or "fq.gz" and
// does not start with the exclusion marker "_". The sample identifier is
// the part of the name before the first occurrence of the first-mate pair
// identifier, or failing that the second-mate identifier. A qualifying
// file matching neither aborts the run.
package sample
