// Package estimator is the HTTP client for the remote laser-job estimation
// service.
//
// Client.Compute uploads one drawing together with the machine parameters as
// a multipart form to POST /api/calculate and returns the decoded report.
// Each call makes exactly one attempt. Failures are classified as
// *apperrors.NetworkError (the service could not be reached or timed out),
// *apperrors.ServiceError (the service answered with a non-2xx status) or
// *apperrors.DecodeError (a 2xx answer that is not a valid report).
package estimator
