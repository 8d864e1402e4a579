// Package testutil provides fixtures for pipeline tests: FastQC report
// archives, gzipped FASTQ files, and fake external tools.
//
// The fake tools are small shell scripts that accept the same arguments as
// the real programs, create the files the pipeline expects, and append
// their command line to a shared calls file:
//
//	tools := testutil.NewFakeTools(t)
//	tools.AddReport("S1.1", testutil.Report{Reads: 20000, MinLength: 35, MaxLength: 151})
//	tools.Apply(&cfg)
package testutil
