package messaging

// MockMessageSender is an in-memory implementation of MessageSender for
// testing. It records every message it is handed.
type MockMessageSender struct {
	Sent []*ExecutionMessage
}

// NewMockMessageSender creates a new MockMessageSender.
func NewMockMessageSender() *MockMessageSender {
	return &MockMessageSender{}
}

// SendExecutionMessage records the message.
func (m *MockMessageSender) SendExecutionMessage(msg *ExecutionMessage) error {
	m.Sent = append(m.Sent, msg)
	return nil
}

// Close does nothing.
func (m *MockMessageSender) Close() error {
	return nil
}

// Ensure MockMessageSender implements MessageSender
var _ MessageSender = (*MockMessageSender)(nil)
