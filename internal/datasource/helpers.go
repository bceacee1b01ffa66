package datasource

import (
	"fmt"
	"net/http"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
)

const (
	fetchErrorContext     = "on fetching toggles"
	fetchWillRetryMessage = "will retry at next scheduled poll interval"
)

// InvalidURLError is returned when a fetcher is configured with an address that is not an absolute
// http or https URL.
type InvalidURLError struct {
	URL string
}

func (e InvalidURLError) Error() string {
	return fmt.Sprintf("invalid unleash repository uri [%s]", e.URL)
}

type httpStatusError struct {
	Message string
	Code    int
}

func (e httpStatusError) Error() string {
	return e.Message
}

type malformedJSONError struct {
	innerError error
}

func (e malformedJSONError) Error() string {
	return "malformed feature document: " + e.innerError.Error()
}

func (e malformedJSONError) Unwrap() error {
	return e.innerError
}

func httpErrorDescription(statusCode int) string {
	message := ""
	if statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden {
		message = " (invalid API token)"
	}
	return fmt.Sprintf("HTTP error %d%s", statusCode, message)
}

func checkForHTTPError(statusCode int, url string) error {
	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return httpStatusError{
			Message: fmt.Sprintf("Not authorized to access URL: %s. Verify that your API token is correct.", url),
			Code:    statusCode,
		}
	case statusCode == http.StatusNotFound:
		return httpStatusError{
			Message: fmt.Sprintf("Resource not found when accessing URL: %s. Verify that the server URL is correct.", url),
			Code:    statusCode,
		}
	case statusCode >= 400:
		return httpStatusError{
			Message: fmt.Sprintf("Unexpected response code: %d when accessing URL: %s", statusCode, url),
			Code:    statusCode,
		}
	}
	return nil
}

// Every fetch failure is recoverable: the repository keeps its snapshot and polls again on the
// next tick, whatever the cause.
func logFetchFailure(loggers ldlog.Loggers, result FetchResult) {
	desc := ""
	if result.StatusCode > 0 {
		desc = httpErrorDescription(result.StatusCode)
	} else if result.Err != nil {
		desc = result.Err.Error()
	}
	loggers.Warnf("Error %s (%s): %s", fetchErrorContext, fetchWillRetryMessage, desc)
}
