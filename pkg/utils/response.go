package utils

// ResponseData is the envelope every REST endpoint returns.
type ResponseData struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Results any    `json:"results,omitempty"`
}

// PanicIfNeeded panics with the given error so the recovery middleware can
// translate it into an HTTP response.
func PanicIfNeeded(err any, message ...string) {
	if err != nil {
		panic(err)
	}
}
