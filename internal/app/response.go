package app

// Response is the uniform envelope every operation returns. Code 0 means
// success, 404 not found, 500 internal error. No operation ever surfaces a
// bare error to the transport layer.
type Response struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data"`
}

// OK wraps data in a success envelope.
func OK(data any) Response {
	return Response{Code: 0, Msg: "success", Data: data}
}

// NotFound builds a 404 envelope.
func NotFound(msg string) Response {
	return Response{Code: 404, Msg: msg}
}

// Internal builds a 500 envelope.
func Internal(msg string) Response {
	return Response{Code: 500, Msg: msg}
}
