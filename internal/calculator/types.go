package calculator

// PressRequest is the JSON body for POST /calculator/{userID}/press. Button
// carries the keypad identifier, e.g. "num_7", "op_+", "func_sqrt",
// "calculate".
type PressRequest struct {
	Button string `json:"button"`
}

// InputRequest is the JSON body for POST /calculator/{userID}/input: a free
// text expression typed instead of pressed.
type InputRequest struct {
	Text string `json:"text"`
}

// DisplayResponse reports the session's presentation state after an edit.
type DisplayResponse struct {
	UserID     string `json:"user_id"`
	Display    string `json:"display"`
	Expression string `json:"expression"`
}

// ResultResponse reports a successful evaluation. Result is the canonical
// decimal text that also became the session's new buffer.
type ResultResponse struct {
	UserID     string `json:"user_id"`
	Expression string `json:"expression"`
	Result     string `json:"result"`
	Display    string `json:"display"`
}

// EvalErrorResponse reports a classified evaluation failure. The session
// buffer is left untouched so the user can repair it.
type EvalErrorResponse struct {
	UserID     string `json:"user_id"`
	Error      string `json:"error"`
	ErrorKind  string `json:"error_kind"`
	Expression string `json:"expression"`
	Display    string `json:"display"`
}
