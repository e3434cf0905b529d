// Package util holds small parsing and sanitizing helpers shared by the
// server and job packages.
package util
