package chat

import "encoding/json"

const CommandOperator = "operator"

// Reply is a structurally valid answer from the remote bot. Media, Link and
// Form are side channels the remote contract allows but the client does not
// render yet; they are kept raw so future handling needs no reshaping here.
type Reply struct {
	Message string
	Command string
	Media   []json.RawMessage
	Link    json.RawMessage
	Form    json.RawMessage
}
