package source

import (
	"context"
	"fmt"

	"github.com/ukaji3/sheetjson-go/pkg/sheetjson"
	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/models"
)

// Metadata returns the envelope metadata of a thread.
func (t *Thread) Metadata() models.DocumentMetadata {
	return models.DocumentMetadata{
		Title:     t.Thread.Title,
		Link:      t.Thread.Link,
		Timestamp: t.Thread.UpdatedUsec,
	}
}

// ExportSpreadsheet downloads a spreadsheet thread and exports it wrapped with the thread's
// metadata. Threads of any other type fail with ErrNotSpreadsheet.
func (c *Client) ExportSpreadsheet(ctx context.Context, thread *Thread, opts sheetjson.Options) (*models.Envelope, error) {
	if !thread.IsSpreadsheet() {
		return nil, fmt.Errorf("%w: %s has type %q", ErrNotSpreadsheet, thread.Thread.ID, thread.Thread.Type)
	}

	data, err := c.ExportXLSX(ctx, thread.Thread.ID)
	if err != nil {
		return nil, err
	}

	wb, err := sheetjson.OpenBytes(data, opts)
	if err != nil {
		return nil, fmt.Errorf("opening export of %s: %w", thread.Thread.ID, err)
	}
	defer wb.Close()

	return wb.ExportEnvelope(thread.Metadata())
}
