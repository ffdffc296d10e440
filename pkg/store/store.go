// Package store persists skhd configurations. Every write follows the
// same protocol: validate the model, back up the existing file, write
// the new content to a temp file in the target directory, re-parse the
// temp content as a final gate, then atomically rename over the
// target. The config file on disk is either the old content or the new
// content at every instant, never a partial write.
package store

import (
	"context"
	"io/fs"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/skhdtools/skhdctl/pkg/errors"
	"github.com/skhdtools/skhdctl/pkg/logging"
	"github.com/skhdtools/skhdctl/pkg/parser"
	"github.com/skhdtools/skhdctl/pkg/paths"
	"github.com/skhdtools/skhdctl/pkg/serializer"
	"github.com/skhdtools/skhdctl/pkg/types"
	"github.com/skhdtools/skhdctl/pkg/validation"
)

// defaultFileMode is used when the target does not exist yet
const defaultFileMode = fs.FileMode(0644)

// SaveOptions tunes a single Save call.
type SaveOptions struct {
	// SkipBackup suppresses the pre-write backup. Callers that already
	// hold a fresh backup of the target use it to avoid a second copy.
	SkipBackup bool
}

// SaveReceipt reports what a successful Save did.
type SaveReceipt struct {
	// Path is the file that was written
	Path string `json:"path"`

	// BackupPath is the backup taken before the write, empty when the
	// target did not exist or the backup was skipped
	BackupPath string `json:"backup_path,omitempty"`

	// NewLastModified is the target's modification time after the write
	NewLastModified time.Time `json:"new_last_modified"`
}

// Load reads and parses the skhd config at path. An empty path resolves
// through the conventional search locations. A missing file is not an
// error: the returned ConfigFile is empty and carries a single
// FileMissing parse error, so callers can offer to create the file.
func Load(fsys types.FS, path string) (*types.ConfigFile, error) {
	logger := logging.GetLogger("store")

	if path == "" {
		p, err := paths.New()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "failed to resolve config locations")
		}
		resolved, found := p.FindConfigFile(fsys)
		if resolved == "" {
			return nil, errors.New(errors.ErrFileNotFound, "no config search locations available")
		}
		logger.Debug().Str("path", resolved).Bool("found", found).Msg("Resolved config path")
		path = resolved
	}

	data, err := fsys.ReadFile(path)
	if err != nil {
		switch {
		case os.IsNotExist(err):
			cfg := types.NewConfigFile(path)
			cfg.ParseErrors = append(cfg.ParseErrors, types.ParseError{
				Kind:    types.ParseErrFileMissing,
				Message: "config file does not exist: " + path,
			})
			return cfg, nil
		case os.IsPermission(err):
			return nil, errors.Wrapf(err, errors.ErrPermission, "cannot read %s", path)
		default:
			return nil, errors.Wrapf(err, errors.ErrFileRead, "failed to read %s", path)
		}
	}

	cfg := parser.Build(path, string(data))
	if info, statErr := fsys.Stat(path); statErr == nil {
		cfg.LastModified = info.ModTime()
	}

	logger.Debug().
		Str("path", path).
		Int("shortcuts", len(cfg.Shortcuts)).
		Int("parseErrors", len(cfg.ParseErrors)).
		Msg("Config loaded")
	return cfg, nil
}

// Save writes cfg to path using the atomic protocol. The context is
// honored up to the backup step; once writing begins the call runs to
// completion so the protocol is never abandoned halfway.
func Save(ctx context.Context, fsys types.FS, path string, cfg *types.ConfigFile, opts SaveOptions) (*SaveReceipt, error) {
	logger := logging.GetLogger("store")

	if path == "" {
		return nil, errors.New(errors.ErrInvalidInput, "save path is empty")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := validation.CheckStructure(cfg); err != nil {
		return nil, err
	}

	mode := defaultFileMode
	exists := false
	if info, err := fsys.Stat(path); err == nil {
		exists = true
		mode = info.Mode().Perm()
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, errors.ErrFileRead, "failed to stat %s", path)
	}

	receipt := &SaveReceipt{Path: path}
	if exists && !opts.SkipBackup {
		backup, err := CreateBackup(fsys, path)
		if err != nil {
			return nil, err
		}
		receipt.BackupPath = backup.BackupPath
		cfg.BackupPath = backup.BackupPath
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text := serializer.Serialize(cfg)
	tempPath := tempPathFor(path)
	if err := fsys.WriteFileSync(tempPath, []byte(text), mode); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileWrite, "failed to write temp file %s", tempPath)
	}
	if exists {
		// WriteFileSync perm is subject to the umask on creation
		if err := fsys.Chmod(tempPath, mode); err != nil {
			logger.Warn().Err(err).Str("path", tempPath).Msg("Could not preserve file mode")
		}
	}

	// The serializer emits only model content, so any parse error in the
	// written text is new damage and the write must not land.
	if reparsed := parser.Build(path, text); len(reparsed.ParseErrors) > 0 {
		first := reparsed.ParseErrors[0]
		if removeErr := fsys.Remove(tempPath); removeErr != nil {
			logger.Warn().Err(removeErr).Str("path", tempPath).Msg("Could not remove temp file")
		}
		return nil, errors.Newf(errors.ErrWriteValidationFailed,
			"serialized config does not re-parse: %s", first.String()).
			WithDetail("path", path).
			WithDetail("parse_errors", len(reparsed.ParseErrors))
	}

	if err := fsys.Rename(tempPath, path); err != nil {
		if removeErr := fsys.Remove(tempPath); removeErr != nil {
			logger.Warn().Err(removeErr).Str("path", tempPath).Msg("Could not remove temp file")
		}
		return nil, errors.Wrapf(err, errors.ErrFileWrite, "failed to replace %s", path)
	}

	savedAt := time.Now()
	if info, err := fsys.Stat(path); err == nil {
		savedAt = info.ModTime()
	}
	receipt.NewLastModified = savedAt

	cfg.Path = path
	cfg.MarkSaved(savedAt)

	logger.Info().
		Str("path", path).
		Str("backup", receipt.BackupPath).
		Int("shortcuts", len(cfg.Shortcuts)).
		Msg("Config saved")
	return receipt, nil
}

// tempPathFor stages the temp file next to the target so the final
// rename never crosses a filesystem boundary.
func tempPathFor(path string) string {
	return path + ".tmp." + uuid.NewString()[:8]
}
