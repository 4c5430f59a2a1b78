package tracker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"strconv"
)

// Frame is one image received from the live stream
type Frame struct {
	Seq         int
	Size        int // 0 when the part carries no Content-Length
	ContentType string
}

// StreamLive opens the multipart live stream and delivers a Frame per part.
// A frame is delivered once its headers and declared body have arrived, without
// waiting for the next boundary. Both channels are closed when the stream
// ends; cancelling ctx closes the connection.
func (c *Client) StreamLive(ctx context.Context, url string) (<-chan Frame, <-chan error) {
	framesChan := make(chan Frame)
	errChan := make(chan error, 1)

	go func() {
		defer close(framesChan)
		defer close(errChan)

		resp, err := c.get(ctx, c.stream, url)
		if err != nil {
			errChan <- fmt.Errorf("open stream: %w", err)
			return
		}
		defer resp.Body.Close()

		mediaType, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
		if err != nil || params["boundary"] == "" {
			errChan <- fmt.Errorf("open stream: not a multipart stream (%q)", resp.Header.Get("Content-Type"))
			return
		}
		c.logger.Debug("stream opened", "url", url, "media_type", mediaType)

		fail := func(err error) {
			if ctx.Err() == nil {
				errChan <- err
			}
		}

		reader := multipart.NewReader(resp.Body, params["boundary"])
		for seq := 1; ; seq++ {
			part, err := reader.NextPart()
			if err != nil {
				if !errors.Is(err, io.EOF) {
					fail(fmt.Errorf("read stream: %w", err))
				}
				return
			}

			// The end of a part is only known once the next boundary arrives,
			// so the size comes from the part's Content-Length when present.
			size := 0
			if n, err := strconv.ParseInt(part.Header.Get("Content-Length"), 10, 64); err == nil && n > 0 {
				copied, err := io.CopyN(io.Discard, part, n)
				if err != nil {
					fail(fmt.Errorf("read frame %d: %w", seq, err))
					return
				}
				size = int(copied)
			}

			select {
			case framesChan <- Frame{Seq: seq, Size: size, ContentType: part.Header.Get("Content-Type")}:
			case <-ctx.Done():
				return
			}

			// Drain the rest of the part; this blocks until the next boundary
			if _, err := io.Copy(io.Discard, part); err != nil {
				fail(fmt.Errorf("read frame %d: %w", seq, err))
				return
			}
		}
	}()

	return framesChan, errChan
}
