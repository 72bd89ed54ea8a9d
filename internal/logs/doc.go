// Package logs reads the daemon's JSON log file for `chorus logs`.
//
// Reads are bounded: the last N matching records are kept in a ring, and
// follow mode resumes from the returned byte offset so callers can poll
// without rereading the file. Records can be filtered by track identifier or
// request correlation id; lines that are not JSON never match a filter.
package logs
