package ctxutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestContextRoundTrip(t *testing.T) {
	ctx := context.Background()
	if GetTraceData(ctx) != nil || GetRequestData(ctx) != nil {
		t.Fatalf("empty context must carry no data")
	}

	id := uuid.New()
	ctx = WithTraceData(ctx, &TraceData{TraceID: "t", RequestID: "r"})
	ctx = WithRequestData(ctx, &RequestData{UserID: id})

	if td := GetTraceData(ctx); td == nil || td.TraceID != "t" || td.RequestID != "r" {
		t.Fatalf("trace data: %+v", td)
	}
	if rd := GetRequestData(ctx); rd == nil || rd.UserID != id {
		t.Fatalf("request data: %+v", rd)
	}
}
