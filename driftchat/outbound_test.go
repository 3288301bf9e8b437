package driftchat

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/driftchat/driftchat-sdk-go/driftchat/rest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingChannel struct {
	mu   sync.Mutex
	sent []sendMessagePayload
}

func (r *recordingChannel) SendMessage(_ context.Context, p sendMessagePayload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, p)
	return nil
}

func (r *recordingChannel) payloads() []sendMessagePayload {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sendMessagePayload(nil), r.sent...)
}

type fakeUploader struct {
	resp *rest.UploadResponse
	err  error
}

func (f *fakeUploader) Upload(_ context.Context, _, _ string, _ io.Reader) (*rest.UploadResponse, error) {
	return f.resp, f.err
}

func TestSendText(t *testing.T) {
	ch := &recordingChannel{}
	out := &Outbound{ch: ch}

	require.NoError(t, out.SendText(context.Background(), "room-1", "hello"))

	sent := ch.payloads()
	require.Len(t, sent, 1)
	assert.Equal(t, "room-1", sent[0].ChatID)
	assert.Equal(t, "hello", sent[0].Content)
	assert.Equal(t, KindText, sent[0].Type)
}

func TestSendTextEmptyContent(t *testing.T) {
	for _, content := range []string{"", "  ", "\t\n "} {
		ch := &recordingChannel{}
		out := &Outbound{ch: ch}

		err := out.SendText(context.Background(), "room-1", content)
		assert.True(t, errors.Is(err, ErrEmptyContent), "content %q must be rejected", content)
		assert.Empty(t, ch.payloads(), "no channel emission for rejected content")
	}
}

func TestSendFile(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		wantKind    MessageKind
	}{
		{"image mime maps to image", "image/png", KindImage},
		{"pdf maps to file", "application/pdf", KindFile},
		{"unknown mime maps to file", "", KindFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := &recordingChannel{}
			out := &Outbound{
				ch:       ch,
				uploader: &fakeUploader{resp: &rest.UploadResponse{FileURL: "/uploads/x", FileName: "x.bin"}},
			}

			err := out.SendFile(context.Background(), "room-1", File{
				Name:        "x.bin",
				ContentType: tt.contentType,
				Size:        42,
				Content:     strings.NewReader("data"),
			})
			require.NoError(t, err)

			sent := ch.payloads()
			require.Len(t, sent, 1)
			assert.Equal(t, tt.wantKind, sent[0].Type)
			assert.Equal(t, "/uploads/x", sent[0].FileURL)
			assert.Equal(t, "x.bin", sent[0].FileName)
			assert.Equal(t, "x.bin", sent[0].Content)
			assert.Equal(t, int64(42), sent[0].FileSize)
		})
	}
}

func TestSendFileUploadFailure(t *testing.T) {
	ch := &recordingChannel{}
	out := &Outbound{
		ch:       ch,
		uploader: &fakeUploader{err: errors.New("disk full")},
	}

	err := out.SendFile(context.Background(), "room-1", File{
		Name:    "x.bin",
		Content: strings.NewReader("data"),
	})

	assert.True(t, errors.Is(err, ErrUploadFailed))
	assert.Empty(t, ch.payloads(), "a failed upload must never emit a partial message event")
}
