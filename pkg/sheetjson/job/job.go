// Package job runs the document sync: fetch each configured spreadsheet, export it to JSON
// and publish the result when the document changed.
package job

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ukaji3/sheetjson-go/pkg/sheetjson"
	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/config"
	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/models"
	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/output"
	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/publish"
	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/source"
)

// Source fetches documents and exports spreadsheets. *source.Client implements it.
type Source interface {
	GetThread(ctx context.Context, id string) (*source.Thread, error)
	ExportSpreadsheet(ctx context.Context, thread *source.Thread, opts sheetjson.Options) (*models.Envelope, error)
}

// Runner syncs documents from a Source to a Publisher.
type Runner struct {
	Source      Source
	Publisher   publish.Publisher
	Options     sheetjson.Options
	Pretty      bool
	Concurrency int
	Logger      logrus.FieldLogger
}

// Result is the outcome for one document.
type Result struct {
	DocumentID string
	Output     string
	Title      string
	Timestamp  int64
	Published  bool
	Bytes      int
}

// Run syncs every document, at most Concurrency at a time. The first failure cancels the
// remaining documents and is returned; results are in document order.
func (r *Runner) Run(ctx context.Context, docs []config.Document) ([]Result, error) {
	log := r.logger().WithField("run_id", uuid.NewString())
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.Concurrency, 1))

	results := make([]Result, len(docs))
	for i, doc := range docs {
		g.Go(func() error {
			res, err := r.syncDocument(ctx, log.WithField("document_id", doc.ID), doc)
			if err != nil {
				return fmt.Errorf("document %s: %w", doc.ID, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.WithError(err).Error("Sync failed")
		return nil, err
	}

	published := 0
	for _, res := range results {
		if res.Published {
			published++
		}
	}
	log.WithFields(logrus.Fields{
		"documents": len(docs),
		"published": published,
		"duration":  time.Since(start).String(),
	}).Info("Sync complete")
	return results, nil
}

func (r *Runner) syncDocument(ctx context.Context, log logrus.FieldLogger, doc config.Document) (Result, error) {
	thread, err := r.Source.GetThread(ctx, doc.ID)
	if err != nil {
		return Result{}, err
	}

	opts := r.Options
	opts.Logger = log
	env, err := r.Source.ExportSpreadsheet(ctx, thread, opts)
	if err != nil {
		return Result{}, err
	}

	body, err := output.ToJSON(env, r.Pretty)
	if err != nil {
		return Result{}, fmt.Errorf("serializing export: %w", err)
	}

	wrote, err := r.Publisher.Publish(ctx, publish.Object{
		Key:         doc.Output,
		Body:        body,
		ContentType: output.ContentType,
		Timestamp:   env.Metadata.Timestamp,
	})
	if err != nil {
		return Result{}, err
	}

	log.WithFields(logrus.Fields{"key": doc.Output, "published": wrote}).Info("Document synced")
	return Result{
		DocumentID: doc.ID,
		Output:     doc.Output,
		Title:      env.Metadata.Title,
		Timestamp:  env.Metadata.Timestamp,
		Published:  wrote,
		Bytes:      len(body),
	}, nil
}

func (r *Runner) logger() logrus.FieldLogger {
	if r.Logger != nil {
		return r.Logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
