// SPDX-License-Identifier: MIT

package jobs

import (
	"context"
	"fmt"

	"github.com/google/renameio/v2"

	"github.com/qsolv/qsudoku/internal/board"
	"github.com/qsolv/qsudoku/internal/log"
)

// writeBoardAtomic writes the solved board as CSV with full durability
// guarantees: fsync before rename prevents data loss on power failure.
func writeBoardAtomic(ctx context.Context, path string, b *board.Board) error {
	logger := log.FromContext(ctx)

	pendingFile, err := renameio.NewPendingFile(path)
	if err != nil {
		return fmt.Errorf("create pending solution file: %w", err)
	}
	defer func() {
		// renameio removes the temp file if not committed
		if err := pendingFile.Cleanup(); err != nil {
			logger.Debug().Err(err).Msg("cleanup pending solution file")
		}
	}()

	if err := b.WriteCSV(pendingFile); err != nil {
		return fmt.Errorf("write solution data: %w", err)
	}

	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace solution file: %w", err)
	}
	return nil
}

// writeFileAtomic writes raw bytes with the same guarantees.
func writeFileAtomic(ctx context.Context, path string, data []byte) error {
	logger := log.FromContext(ctx)

	pendingFile, err := renameio.NewPendingFile(path)
	if err != nil {
		return fmt.Errorf("create pending file: %w", err)
	}
	defer func() {
		if err := pendingFile.Cleanup(); err != nil {
			logger.Debug().Err(err).Msg("cleanup pending file")
		}
	}()

	if _, err := pendingFile.Write(data); err != nil {
		return fmt.Errorf("write data: %w", err)
	}

	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace file: %w", err)
	}
	return nil
}
