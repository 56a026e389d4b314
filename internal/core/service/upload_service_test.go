package service

import (
	"context"
	"errors"
	"io"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/voltaic/energy-cms/internal/core/domain"
	"github.com/voltaic/energy-cms/internal/core/ports"
)

type memoryStore struct {
	objects     map[string][]byte
	contentType map[string]string
	err         error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: map[string][]byte{}, contentType: map[string]string{}}
}

func (m *memoryStore) Put(_ context.Context, key, contentType string, _ int64, body io.Reader) error {
	if m.err != nil {
		return m.err
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.objects[key] = b
	m.contentType[key] = contentType
	return nil
}

func (m *memoryStore) URL(key string) string { return "https://cdn.example.com/" + key }

func TestUploadService_Upload(t *testing.T) {
	store := newMemoryStore()
	activity := &recordingActivity{}
	svc := NewUploadService(store, activity, 1024, discardLogger)
	svc.now = func() time.Time { return time.Date(2026, 7, 9, 0, 0, 0, 0, time.UTC) }

	res, err := svc.Upload(context.Background(), admin, ports.UploadInput{
		Filename:    "../../panel.PNG",
		ContentType: "image/png; charset=binary",
		Size:        4,
		Body:        strings.NewReader("\x89PNG"),
	})
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}

	if !regexp.MustCompile(`^uploads/2026/07/[0-9a-f-]{36}\.png$`).MatchString(res.Key) {
		t.Fatalf("unexpected key %q", res.Key)
	}
	if res.URL != "https://cdn.example.com/"+res.Key {
		t.Fatalf("unexpected url %q", res.URL)
	}
	if string(store.objects[res.Key]) != "\x89PNG" || store.contentType[res.Key] != "image/png" {
		t.Fatalf("object not stored as expected")
	}
	if got := activity.last(); got.Action != domain.ActionUpload || got.Detail != "panel.PNG -> "+res.Key {
		t.Fatalf("unexpected activity event: %+v", got)
	}
}

func TestUploadService_Upload_Rejections(t *testing.T) {
	store := newMemoryStore()
	svc := NewUploadService(store, nil, 1024, discardLogger)

	cases := map[string]ports.UploadInput{
		"wrong type": {ContentType: "application/pdf", Size: 10, Body: strings.NewReader("x")},
		"empty":      {ContentType: "image/jpeg", Size: 0, Body: strings.NewReader("")},
		"too large":  {ContentType: "image/jpeg", Size: 2048, Body: strings.NewReader("x")},
	}
	for name, in := range cases {
		if _, err := svc.Upload(context.Background(), admin, in); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("%s: expected ErrValidation, got %v", name, err)
		}
	}
	if len(store.objects) != 0 {
		t.Fatalf("rejected files must not be stored")
	}
}

func TestUploadService_Upload_StoreFailure(t *testing.T) {
	store := newMemoryStore()
	store.err = errors.New("s3: access denied")
	svc := NewUploadService(store, nil, 0, discardLogger)

	_, err := svc.Upload(context.Background(), admin, ports.UploadInput{ContentType: "image/webp", Size: 1, Body: strings.NewReader("x")})
	if !errors.Is(err, domain.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
