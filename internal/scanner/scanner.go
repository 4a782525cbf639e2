// Package scanner reads codes from a barcode reader for exactly one session at a time.
package scanner

import (
	"context"
	"errors"
	"strings"

	"github.com/fekuna/omnipos-retail-service/internal/apperr"
)

var (
	ErrBusy   = apperr.New(apperr.KindDevice, "ScannerBusy", "the scanner is already in use")
	ErrClosed = apperr.New(apperr.KindDevice, "ScannerClosed", "the scanner session is closed")
)

// Device hands out exclusive streams. Every stream returned by Open must be closed.
type Device interface {
	Open(ctx context.Context) (Stream, error)
}

type Stream interface {
	// Next blocks until a code is decoded, the stream fails, or ctx is done.
	Next(ctx context.Context) (string, error)
	Close() error
}

// Scan opens dev, returns the first non-empty code and releases the stream on every path.
func Scan(ctx context.Context, dev Device) (code string, err error) {
	stream, err := dev.Open(ctx)
	if err != nil {
		return "", deviceErr(ctx, err, "failed to open scanner")
	}
	defer func() {
		if cerr := stream.Close(); cerr != nil && err == nil {
			err = apperr.Device(cerr, "failed to release scanner")
		}
	}()

	for {
		raw, err := stream.Next(ctx)
		if err != nil {
			return "", deviceErr(ctx, err, "failed to read from scanner")
		}
		if code := strings.TrimSpace(raw); code != "" {
			return code, nil
		}
	}
}

// deviceErr keeps cancellation and device errors recognizable and wraps everything else as device.
func deviceErr(ctx context.Context, err error, message string) error {
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return err
	}
	if apperr.IsKind(err, apperr.KindDevice) {
		return err
	}
	return apperr.Device(err, message)
}
