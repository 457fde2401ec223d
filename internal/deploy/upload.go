package deploy

import (
	"context"
	"fmt"
	"log/slog"

	"daodeploy/internal/ledger"
	"daodeploy/internal/metrics"
)

const (
	// ChunkSize is the ledger's maximum file chunk size
	ChunkSize = 1024

	// chunkHeadroom is one spare chunk over the exact count. Removing it
	// has broken large-bytecode uploads before; it stays a constant rather
	// than being re-derived.
	chunkHeadroom = 1
)

// UploadOptions are the optional, independent file-create mutations
type UploadOptions struct {
	Memo           *string
	ExpirationDays *int
}

// ResourceCreationError reports a non-success receipt from one of the
// resource-creating steps. These are fatal: a failed create leaves no usable
// identifier to retry against, so the enclosing deployment stage aborts.
type ResourceCreationError struct {
	Step   string
	Status ledger.ReceiptStatus
}

func (e *ResourceCreationError) Error() string {
	return fmt.Sprintf("%s transaction failed with receipt %s", e.Step, e.Status)
}

// MaxChunks returns the chunk cap declared on a file append for a payload of
// the given size: the exact chunk count plus headroom.
func MaxChunks(size int) uint64 {
	return uint64((size+ChunkSize-1)/ChunkSize) + chunkHeadroom
}

// Upload pushes compiled bytecode to the ledger as a file resource: create
// an empty file, then append the full contents with the chunk cap declared
// up front. The file id is returned only after both receipts report
// success; there is no retry on failure.
func Upload(ctx context.Context, client ledger.Client, bytecode []byte, opts UploadOptions) (string, error) {
	maxChunks := MaxChunks(len(bytecode))
	slog.Info("Creating bytecode file",
		"size_bytes", len(bytecode),
		"max_chunks", maxChunks,
	)

	fileID, status, err := client.CreateFile(ctx, ledger.FileCreate{
		Memo:           opts.Memo,
		ExpirationDays: opts.ExpirationDays,
	})
	if err != nil {
		return "", fmt.Errorf("file-create: %w", err)
	}
	if !status.OK() || fileID == "" {
		return "", &ResourceCreationError{Step: "file-create", Status: status}
	}
	slog.Info("✅ Bytecode file created", "file_id", fileID)

	status, err = client.AppendFile(ctx, ledger.FileAppend{
		FileID:    fileID,
		Contents:  bytecode,
		MaxChunks: maxChunks,
	})
	if err != nil {
		return "", fmt.Errorf("file-append: %w", err)
	}
	if !status.OK() {
		return "", &ResourceCreationError{Step: "file-append", Status: status}
	}

	metrics.UploadedBytes.Add(float64(len(bytecode)))
	slog.Info("✅ Bytecode appended", "file_id", fileID)
	return fileID, nil
}
