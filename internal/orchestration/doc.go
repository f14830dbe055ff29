// Package orchestration owns the estimation session. It observes the
// parameter store and the file selection, issues a computation on every change
// and applies only the response of the most recent request, so that a slow
// answer to an earlier edit can never overwrite a newer result.
package orchestration
