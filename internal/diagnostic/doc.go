// Package diagnostic collects resolution findings and defines the error
// taxonomy returned by compiled mappers.
//
// Resolution never stops on the first problem: the property resolver records
// errors, warnings and infos per (source, target) pair and the registry turns
// the collected errors into a single ConfigurationError. Invocation-time
// failures use the typed errors from errors.go; each of them unwraps to an
// exported sentinel so callers can match with errors.Is.
package diagnostic
