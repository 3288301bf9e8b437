package driftchat

import (
	"context"
	"io"
	"strings"

	"github.com/driftchat/driftchat-sdk-go/driftchat/rest"
)

// Uploader is the slice of the file store collaborator used for outbound
// file messages.
type Uploader interface {
	Upload(ctx context.Context, fileName, contentType string, r io.Reader) (*rest.UploadResponse, error)
}

// outboundChannel is the slice of the live channel outbound sends use.
type outboundChannel interface {
	SendMessage(ctx context.Context, p sendMessagePayload) error
}

// File describes a user-picked file to send.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.Reader
}

// Outbound emits user-composed messages on the live channel. It never
// touches the timeline: the backend echoes every sent message back over
// the channel, including to the sender, and that echo is the only way a
// sender sees their own message appear.
type Outbound struct {
	ch       outboundChannel
	uploader Uploader
}

// NewOutbound wires an outbound dispatcher to a channel and file store.
func NewOutbound(ch *Channel, uploader Uploader) *Outbound {
	return &Outbound{ch: ch, uploader: uploader}
}

// SendText emits a text message. Content that is blank after trimming is
// rejected with ErrEmptyContent and nothing reaches the channel.
func (o *Outbound) SendText(ctx context.Context, roomID, content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyContent
	}
	return o.ch.SendMessage(ctx, sendMessagePayload{
		ChatID:  roomID,
		Content: content,
		Type:    KindText,
	})
}

// SendFile uploads the file through the file store first, then emits a
// message carrying the stored reference. An upload failure aborts the
// send; no partial message event is ever emitted.
func (o *Outbound) SendFile(ctx context.Context, roomID string, f File) error {
	ref, err := o.uploader.Upload(ctx, f.Name, f.ContentType, f.Content)
	if err != nil {
		return WrapError(CodeUploadFailed, "upload failed", err)
	}

	kind := KindFile
	if strings.HasPrefix(f.ContentType, "image/") {
		kind = KindImage
	}
	return o.ch.SendMessage(ctx, sendMessagePayload{
		ChatID:   roomID,
		Content:  ref.FileName,
		Type:     kind,
		FileURL:  ref.FileURL,
		FileName: ref.FileName,
		FileSize: f.Size,
	})
}
