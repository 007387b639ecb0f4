package ops

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/hpungsan/tome/internal/errors"
	"github.com/hpungsan/tome/internal/export"
	"github.com/hpungsan/tome/internal/i18n"
)

// ExportInput contains parameters for the ExportEntries operation.
type ExportInput struct {
	Type          string // default: "all"
	Search        string
	Lang          i18n.Lang
	IncludeHidden bool
	Path          string // optional; when set the document is written there
}

// ExportOutput contains the result of the ExportEntries operation.
// Markdown is omitted when the document was written to Path.
type ExportOutput struct {
	Markdown    string   `json:"markdown,omitempty"`
	Path        string   `json:"path,omitempty"`
	Count       int      `json:"count"`
	ExportedAt  int64    `json:"exported_at"`
	FailedTypes []string `json:"failed_types,omitempty"`
}

// ExportEntries renders the selected entries as one Markdown document.
func ExportEntries(ctx context.Context, env *Env, input ExportInput) (*ExportOutput, error) {
	if input.Path != "" {
		if err := ValidateExportPath(input.Path); err != nil {
			return nil, err
		}
	}

	matched, failed, err := selectEntries(ctx, env, input.Type, input.Search, input.Lang, input.IncludeHidden)
	if err != nil {
		return nil, err
	}

	doc := export.Markdown(matched)
	out := &ExportOutput{
		Count:       len(matched),
		ExportedAt:  time.Now().Unix(),
		FailedTypes: failed,
	}
	if input.Path == "" {
		out.Markdown = doc
		return out, nil
	}

	if err := writeAtomic(input.Path, []byte(doc)); err != nil {
		return nil, err
	}
	out.Path = input.Path
	return out, nil
}

// writeAtomic writes data to a temp file beside path, then renames it into
// place so an existing file survives a failed write.
func writeAtomic(path string, data []byte) error {
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := path + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return errors.NewInternal(fmt.Errorf("failed to create export file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if _, err := file.Write(data); err != nil {
		return errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return errors.NewInternal(err)
	}
	if err := file.Close(); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	// os.Rename would follow a symlink at the destination.
	if info, err := os.Lstat(path); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInvalidRequest("export path is a symlink")
	}

	if err := os.Rename(tempPath, path); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(path); statErr == nil {
				return errors.NewInvalidRequest("export destination already exists; choose a new path or delete the existing file")
			}
		}
		return errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}

	success = true
	return nil
}
