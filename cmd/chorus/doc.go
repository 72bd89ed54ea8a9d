// Command chorus is the command line front end for the preview offset
// service. It can run the HTTP daemon in the foreground, analyze a single
// identifier or local file, manage the result cache, read the daemon log and
// check the host for the external tools chorus depends on.
package main
