package commands

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/zefrenchwan/docfilters.git/filters"
	"github.com/zefrenchwan/docfilters.git/graphs"
	"github.com/zefrenchwan/docfilters.git/reports"
	"github.com/zefrenchwan/docfilters.git/storage"
)

// loadedDocument is a document with what it was loaded from
type loadedDocument struct {
	// document to work on
	document *graphs.Document
	// filters of the document
	filters []filters.Filter
	// snapshot the document was built from
	snapshot storage.DocumentDTO
	// dao is set when the document comes from the database
	dao *storage.Dao
}

// close releases the database connections, if any
func (l *loadedDocument) close() {
	if l != nil && l.dao != nil {
		l.dao.Close()
	}
}

// save writes the changes of the document back where it came from
func (l *loadedDocument) save(ctx context.Context, env *environment) error {
	refreshed := storage.RefreshSnapshot(l.snapshot, l.document)
	if l.dao != nil {
		return l.dao.SaveSnapshot(ctx, refreshed)
	}

	return storage.WriteSnapshot(env.cfg.Snapshot, refreshed)
}

// loadDocument reads the snapshot file if any, or the document from the database
func loadDocument(ctx context.Context, env *environment) (*loadedDocument, error) {
	result := &loadedDocument{}
	switch {
	case len(env.cfg.Snapshot) != 0:
		if snapshot, err := storage.ReadSnapshot(env.cfg.Snapshot); err != nil {
			return nil, err
		} else {
			result.snapshot = snapshot
		}
	case len(env.cfg.DatabaseURL) != 0 && len(env.cfg.Document) != 0:
		dao, errDao := storage.NewDao(ctx, env.cfg.DatabaseURL)
		if errDao != nil {
			return nil, errDao
		}

		result.dao = &dao
		if snapshot, err := dao.LoadSnapshot(ctx, env.cfg.Document); err != nil {
			dao.Close()
			return nil, err
		} else {
			result.snapshot = snapshot
		}
	default:
		return nil, errors.New("no document: set a snapshot file, or a database url and a document id")
	}

	document, known, errLoad := storage.LoadDocument(result.snapshot)
	if errLoad != nil {
		result.close()
		return nil, errLoad
	}

	result.document = document
	result.filters = known
	env.logger.Debug("document loaded",
		zap.String("document", document.Id),
		zap.Int("elements", len(result.snapshot.Elements)),
		zap.Int("filters", len(known)),
	)

	return result, nil
}

// writeReport writes report to out, or to a file of the output directory
func writeReport(env *environment, out io.Writer, report reports.Report) error {
	if len(env.cfg.OutputDir) == 0 {
		return report.Write(out)
	}

	path := filepath.Join(env.cfg.OutputDir, report.Filename)
	file, errFile := os.Create(path)
	if errFile != nil {
		return errFile
	}

	defer file.Close()
	if err := report.Write(file); err != nil {
		return err
	}

	env.logger.Info("report written", zap.String("path", path))
	return nil
}
