// Command server runs the notekeeper HTTP API and its background archive
// worker in a single process.
package main
