package utils

// ResponseData is the envelope used by every REST handler.
type ResponseData struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Results any    `json:"results,omitempty"`
}

// PanicIfNeeded panics with the given error so the recovery middleware can
// map it onto a status response. Handlers use it after usecase calls.
func PanicIfNeeded(err any, message ...string) {
	if err != nil {
		if len(message) > 0 && err == "record not found" {
			panic(message[0])
		}
		panic(err)
	}
}
