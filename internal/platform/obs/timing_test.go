package obs

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"testing"
)

func TestTimeWritesToContextLogger(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(WithTurn(context.Background(), 3), log.New(&buf, "", 0))

	err := errors.New("boom")
	Time(ctx, "agent.Step")(&err)

	got := buf.String()
	if !strings.HasPrefix(got, "turn=3 op=agent.Step ") || !strings.Contains(got, "err=boom") {
		t.Fatalf("log line = %q, want turn=3 op=agent.Step ... err=boom", got)
	}
}

func TestContextDefaults(t *testing.T) {
	ctx := context.Background()
	if got := TurnFrom(ctx); got != -1 {
		t.Fatalf("TurnFrom = %d, want -1", got)
	}
	if LoggerFrom(ctx) != log.Default() {
		t.Fatalf("LoggerFrom did not fall back to the standard logger")
	}
	if LoggerFrom(WithLogger(ctx, nil)) != log.Default() {
		t.Fatalf("nil logger replaced the standard logger")
	}
}
