package job

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/config"
	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/publish"
	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/source"
)

// NewRunner builds a Runner with the source client and publisher described by cfg.
func NewRunner(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*Runner, error) {
	client, err := source.NewClient(source.Config{
		BaseURL:   cfg.Source.BaseURL,
		Token:     cfg.Source.Token,
		RateLimit: cfg.Source.RateLimit,
		Timeout:   cfg.Source.Timeout,
		Logger:    log,
	})
	if err != nil {
		return nil, err
	}

	pub, err := NewPublisher(ctx, cfg.Publish, log)
	if err != nil {
		return nil, err
	}

	opts, err := cfg.Export.Options(log)
	if err != nil {
		return nil, err
	}

	return &Runner{
		Source:      client,
		Publisher:   pub,
		Options:     opts,
		Pretty:      cfg.Export.Pretty,
		Concurrency: cfg.Concurrency,
		Logger:      log,
	}, nil
}

// NewPublisher builds the publisher selected by cfg.Kind.
func NewPublisher(ctx context.Context, cfg config.PublishConfig, log logrus.FieldLogger) (publish.Publisher, error) {
	switch cfg.Kind {
	case config.PublisherS3:
		return publish.NewS3Publisher(ctx, publish.S3Options{
			Bucket:   cfg.Bucket,
			Prefix:   cfg.Prefix,
			Region:   cfg.Region,
			Endpoint: cfg.Endpoint,
			Logger:   log,
		})
	case config.PublisherFile:
		return publish.NewFilePublisher(cfg.Dir, log)
	}
	return nil, fmt.Errorf("unknown publisher kind: %s", cfg.Kind)
}
