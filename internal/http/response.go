package http

type Status string

const (
	// StatusOK is used for health-check responses.
	StatusOK Status = "OK"

	// StatusSuccess indicates an operation completed successfully.
	StatusSuccess Status = "success"

	// StatusError indicates an operation failed.
	StatusError Status = "error"
)

// Response represents the standard API response format.
type Response struct {
	Status  Status `json:"status,omitempty"`
	Value   string `json:"value,omitempty"`
	Entries []Pair `json:"entries,omitempty"`
	Stats   any    `json:"stats,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Pair is one key/value in a scan response.
type Pair struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func NewOKResponse() Response {
	return Response{Status: StatusOK}
}

func NewSuccessResponse() Response {
	return Response{Status: StatusSuccess}
}

func NewValueResponse(value string) Response {
	return Response{Status: StatusSuccess, Value: value}
}

func NewEntriesResponse(entries []Pair) Response {
	return Response{Status: StatusSuccess, Entries: entries}
}

func NewStatsResponse(stats any) Response {
	return Response{Status: StatusSuccess, Stats: stats}
}

func NewErrorResponse(err string) Response {
	return Response{Status: StatusError, Error: err}
}
