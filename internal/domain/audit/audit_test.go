package audit

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestBuildBaseQuery(t *testing.T) {
	query, args := buildBaseQuery("SELECT COUNT(1)", Filter{Action: "payroll.calculate", EntityType: "payroll", ActorID: 4})
	if !strings.Contains(query, "action = $1") || !strings.Contains(query, "entity_type = $2") || !strings.Contains(query, "actor_user_id = $3") {
		t.Fatalf("unexpected query: %s", query)
	}
	if len(args) != 3 || args[2] != int64(4) {
		t.Fatalf("unexpected args: %v", args)
	}

	query, args = buildBaseQuery("SELECT COUNT(1)", Filter{})
	if strings.Contains(query, "$1") || len(args) != 0 {
		t.Fatalf("expected no filters, got %s %v", query, args)
	}
}

type failingRecorder struct {
	calls int
}

func (f *failingRecorder) Record(context.Context, int64, string, string, int64, any, any) error {
	f.calls++
	return errors.New("db down")
}

func TestLogSwallowsErrors(t *testing.T) {
	rec := &failingRecorder{}
	Log(context.Background(), rec, 1, "request.approve", "request", 9, nil, map[string]string{"status": "approved"})
	if rec.calls != 1 {
		t.Fatalf("expected one call, got %d", rec.calls)
	}
	Log(context.Background(), nil, 1, "request.approve", "request", 9, nil, nil)
}
