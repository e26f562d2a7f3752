package service_test

import (
	"context"
	"sync"

	"hairly/internal/modules/workflow/domain"
)

type fakeSession struct {
	mu sync.Mutex
	id string
}

func (f *fakeSession) Current() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.id, f.id != ""
}

func (f *fakeSession) Set(_ context.Context, id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.id = id
}

func (f *fakeSession) Clear(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.id = ""
}

func (f *fakeSession) Degraded() bool { return false }

type fakeGateway struct {
	mu    sync.Mutex
	calls map[string]int

	upload  func(context.Context, domain.CaptureImage) (domain.UploadReceipt, error)
	plan    func(context.Context, string) (domain.CarePlanPayload, error)
	logFn   func(context.Context, string, domain.LogRequest) (domain.LogReceipt, error)
	history func(context.Context, string) (domain.HistoryPayload, error)
	health  func(context.Context) (domain.Health, error)
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{calls: map[string]int{}}
}

func (f *fakeGateway) count(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeGateway) Calls(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeGateway) Upload(ctx context.Context, image domain.CaptureImage) (domain.UploadReceipt, error) {
	f.count("upload")
	return f.upload(ctx, image)
}

func (f *fakeGateway) CarePlan(ctx context.Context, sessionID string) (domain.CarePlanPayload, error) {
	f.count("plan")
	return f.plan(ctx, sessionID)
}

func (f *fakeGateway) LogProgress(ctx context.Context, sessionID string, req domain.LogRequest) (domain.LogReceipt, error) {
	f.count("log")
	return f.logFn(ctx, sessionID, req)
}

func (f *fakeGateway) History(ctx context.Context, sessionID string) (domain.HistoryPayload, error) {
	f.count("history")
	return f.history(ctx, sessionID)
}

func (f *fakeGateway) Health(ctx context.Context) (domain.Health, error) {
	f.count("health")
	return f.health(ctx)
}

type fakeLoader struct {
	image domain.CaptureImage
	err   error
}

func (f fakeLoader) Load(_ context.Context, path string) (domain.CaptureImage, error) {
	if f.err != nil {
		return domain.CaptureImage{}, f.err
	}
	img := f.image
	img.FileName = path
	return img, nil
}
