package models

// Stream frame types sent to websocket clients during a turn.
const (
	FrameDelta   = "delta"   // incremental assistant text, may carry consultants
	FrameDone    = "done"    // turn completed
	FrameError   = "error"   // turn failed
	FrameMessage = "message" // committed message from the conversation log
)

// StreamFrame is the wire envelope for everything the server pushes to
// a chat client: live streaming deltas, turn terminators, and committed
// messages replayed from the conversation log.
type StreamFrame struct {
	Type        string       `json:"type"`
	Text        string       `json:"text,omitempty"`
	Consultants []Consultant `json:"consultants,omitempty"`
	Message     *ChatMessage `json:"message,omitempty"`
	Error       string       `json:"error,omitempty"`
}
