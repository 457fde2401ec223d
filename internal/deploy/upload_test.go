package deploy

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"daodeploy/internal/ledger"
	"daodeploy/internal/ledger/ledgertest"
)

func TestMaxChunks(t *testing.T) {
	tests := []struct {
		size int
		want uint64
	}{
		{0, 1},
		{1, 2},
		{1023, 2},
		{1024, 2},
		{1025, 3},
		{2048, 3},
		{2500, 4},
		{10240, 11},
	}
	for _, tt := range tests {
		if got := MaxChunks(tt.size); got != tt.want {
			t.Errorf("MaxChunks(%d) = %d, want %d", tt.size, got, tt.want)
		}
	}
}

func TestUpload(t *testing.T) {
	client := &ledgertest.Client{}
	bytecode := bytes.Repeat([]byte{0xab}, 2500)

	fileID, err := Upload(context.Background(), client, bytecode, UploadOptions{})
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if fileID == "" {
		t.Fatal("Upload returned an empty file id")
	}

	if len(client.FileCreates) != 1 {
		t.Fatalf("file creates = %d, want 1", len(client.FileCreates))
	}
	if len(client.FileAppends) != 1 {
		t.Fatalf("file appends = %d, want 1", len(client.FileAppends))
	}
	app := client.FileAppends[0]
	if app.FileID != fileID {
		t.Errorf("append targeted file %q, want %q", app.FileID, fileID)
	}
	if !bytes.Equal(app.Contents, bytecode) {
		t.Error("append contents differ from the bytecode")
	}
	if app.MaxChunks != 4 {
		t.Errorf("append max chunks = %d, want 4", app.MaxChunks)
	}
}

func TestUploadOptionsApplied(t *testing.T) {
	client := &ledgertest.Client{}
	memo := "factory bytecode"
	days := 30

	_, err := Upload(context.Background(), client, []byte{0x01}, UploadOptions{
		Memo:           &memo,
		ExpirationDays: &days,
	})
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	req := client.FileCreates[0]
	if req.Memo == nil || *req.Memo != memo {
		t.Errorf("create memo = %v, want %q", req.Memo, memo)
	}
	if req.ExpirationDays == nil || *req.ExpirationDays != days {
		t.Errorf("create expiration days = %v, want %d", req.ExpirationDays, days)
	}
}

func TestUploadOptionsAbsent(t *testing.T) {
	client := &ledgertest.Client{}

	if _, err := Upload(context.Background(), client, []byte{0x01}, UploadOptions{}); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	req := client.FileCreates[0]
	if req.Memo != nil {
		t.Errorf("create memo = %v, want unset", req.Memo)
	}
	if req.ExpirationDays != nil {
		t.Errorf("create expiration days = %v, want unset", req.ExpirationDays)
	}
}

func TestUploadCreateFailureStopsAppend(t *testing.T) {
	client := &ledgertest.Client{
		CreateFileFn: func(req ledger.FileCreate) (string, ledger.ReceiptStatus, error) {
			return "", ledger.ReceiptStatus(21), nil
		},
	}

	_, err := Upload(context.Background(), client, []byte{0x01}, UploadOptions{})
	var resErr *ResourceCreationError
	if !errors.As(err, &resErr) {
		t.Fatalf("error = %v, want *ResourceCreationError", err)
	}
	if resErr.Step != "file-create" {
		t.Errorf("failed step = %q, want %q", resErr.Step, "file-create")
	}
	// The failed create must not be followed by an append
	if len(client.FileAppends) != 0 {
		t.Errorf("file appends = %d, want 0", len(client.FileAppends))
	}
}

func TestUploadAppendFailure(t *testing.T) {
	client := &ledgertest.Client{
		AppendFileFn: func(req ledger.FileAppend) (ledger.ReceiptStatus, error) {
			return ledger.ReceiptStatus(21), nil
		},
	}

	_, err := Upload(context.Background(), client, []byte{0x01}, UploadOptions{})
	var resErr *ResourceCreationError
	if !errors.As(err, &resErr) {
		t.Fatalf("error = %v, want *ResourceCreationError", err)
	}
	if resErr.Step != "file-append" {
		t.Errorf("failed step = %q, want %q", resErr.Step, "file-append")
	}
}
