package domain

import "testing"

func TestTruncateHistory(t *testing.T) {
	turns := []Turn{
		{Role: RoleUser, Content: "a"},
		{Role: RoleAssistant, Content: "b"},
		{Role: RoleUser, Content: "c"},
		{Role: RoleAssistant, Content: "d"},
	}

	tests := []struct {
		name   string
		window int
		want   []string
	}{
		{"drops oldest", 2, []string{"c", "d"}},
		{"fits", 10, []string{"a", "b", "c", "d"}},
		{"unbounded", 0, []string{"a", "b", "c", "d"}},
		{"negative unbounded", -1, []string{"a", "b", "c", "d"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateHistory(turns, tt.window)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i, content := range tt.want {
				if got[i].Content != content {
					t.Errorf("got[%d].Content = %q, want %q", i, got[i].Content, content)
				}
			}
		})
	}
}

func TestAgentModeTransitions(t *testing.T) {
	ag := NewAgent("t", "", nil)
	if ag.Mode() != ModeIdle {
		t.Fatal("new agent should be idle")
	}
	if ag.PendingHandler() != nil {
		t.Fatal("idle agent has no pending handler")
	}

	ag.EnterSlotFilling(nil)
	if ag.Mode() != ModeAwaitingSlot {
		t.Error("EnterSlotFilling should switch mode")
	}

	ag.FinishSlotFilling()
	if ag.Mode() != ModeIdle || ag.PendingHandler() != nil {
		t.Error("FinishSlotFilling should reset mode and handler")
	}
}
