package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/autodealer/showroom/internal/core/domain"
)

type stubFlag struct {
	on    bool
	err   error
	reads int
}

func (f *stubFlag) Enabled(context.Context) (bool, error) {
	f.reads++
	return f.on, f.err
}

type stubLogRepo struct {
	entries []*domain.LogEntry
	err     error
}

func (r *stubLogRepo) Insert(_ context.Context, e *domain.LogEntry) error {
	if r.err != nil {
		return r.err
	}
	r.entries = append(r.entries, e)
	return nil
}

func (r *stubLogRepo) List(context.Context, domain.LogFilter) ([]*domain.LogEntry, int64, error) {
	return r.entries, int64(len(r.entries)), nil
}

func (r *stubLogRepo) Purge(_ context.Context, before *time.Time) (int64, error) {
	n := int64(len(r.entries))
	r.entries = nil
	return n, nil
}

func TestRequestLogService_RespectsFlag(t *testing.T) {
	flag := &stubFlag{}
	repo := &stubLogRepo{}
	svc := NewRequestLogService(flag, repo, zerolog.Nop())
	ctx := context.Background()

	wrote, err := svc.Log(ctx, &domain.LogEntry{Endpoint: "/api/cars", Method: "GET", StatusCode: 200})
	if err != nil || wrote {
		t.Fatalf("disabled flag: expected no write, got wrote=%v err=%v", wrote, err)
	}

	flag.on = true
	wrote, err = svc.Log(ctx, &domain.LogEntry{Endpoint: "/api/cars", Method: "GET", StatusCode: 200, LatencyMs: -3})
	if err != nil || !wrote {
		t.Fatalf("enabled flag: expected a write, got wrote=%v err=%v", wrote, err)
	}
	if len(repo.entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(repo.entries))
	}
	if repo.entries[0].Timestamp.IsZero() || repo.entries[0].LatencyMs != 0 {
		t.Fatalf("entry not normalized: %+v", repo.entries[0])
	}

	flag.on = false
	if wrote, _ := svc.Log(ctx, &domain.LogEntry{}); wrote {
		t.Fatalf("flag flip must take effect on the next call")
	}
	if flag.reads != 3 {
		t.Fatalf("expected the flag to be read on every call, got %d reads", flag.reads)
	}
}

func TestRequestLogService_Failures(t *testing.T) {
	ctx := context.Background()

	svc := NewRequestLogService(&stubFlag{err: errors.New("db down")}, &stubLogRepo{}, zerolog.Nop())
	if wrote, err := svc.Log(ctx, &domain.LogEntry{}); wrote || err == nil {
		t.Fatalf("flag error: expected no write and an error, got wrote=%v err=%v", wrote, err)
	}

	svc = NewRequestLogService(&stubFlag{on: true}, &stubLogRepo{err: errors.New("mongo down")}, zerolog.Nop())
	if wrote, err := svc.Log(ctx, &domain.LogEntry{}); wrote || err == nil {
		t.Fatalf("write error: expected an error, got wrote=%v err=%v", wrote, err)
	}
}
