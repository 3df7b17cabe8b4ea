package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// MockChatModel records the last input and returns a canned reply.
type MockChatModel struct {
	Reply     string
	Err       error
	LastInput []*schema.Message
}

func (m *MockChatModel) BindTools(tools []*schema.ToolInfo) error { return nil }
func (m *MockChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.LastInput = input
	if m.Err != nil {
		return nil, m.Err
	}
	return &schema.Message{Role: schema.Assistant, Content: m.Reply}, nil
}
func (m *MockChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, nil
}

func newMockLLM(reply string, err error) (*LLMService, *MockChatModel) {
	mock := &MockChatModel{Reply: reply, Err: err}
	return &LLMService{ChatModel: mock}, mock
}

func TestGenerate_MessageShape(t *testing.T) {
	svc, mock := newMockLLM("hello back", nil)

	content, err := svc.Generate(context.Background(), "be terse", "hello", 100, 0.5)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if content != "hello back" {
		t.Errorf("Expected 'hello back', got %q", content)
	}

	if len(mock.LastInput) != 2 {
		t.Fatalf("Expected 2 messages (System + User), got %d", len(mock.LastInput))
	}
	if mock.LastInput[0].Role != schema.System {
		t.Errorf("First message should be System, got %s", mock.LastInput[0].Role)
	}
	if mock.LastInput[0].Content != "be terse" {
		t.Errorf("System content mismatch: %q", mock.LastInput[0].Content)
	}
	if mock.LastInput[1].Role != schema.User || mock.LastInput[1].Content != "hello" {
		t.Errorf("Unexpected user message: %+v", mock.LastInput[1])
	}
}

func TestGenerate_ErrorPassthrough(t *testing.T) {
	svc, _ := newMockLLM("", errors.New("rate limited"))

	if _, err := svc.Generate(context.Background(), "sys", "user", 0, 0); err == nil {
		t.Error("Expected error from failing model")
	}
}
