package notion

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"sitewatch/internal/core"
)

const (
	apiBaseURL = "https://api.notion.com"
	apiVersion = "2022-06-28"
)

// Publisher writes rendered reports into a Notion workspace as child
// pages of a configured parent page.
type Publisher struct {
	client   *resty.Client
	parentID string
}

// NewPublisher builds a publisher for the given integration token and
// parent page.
func NewPublisher(token, parentPageID string) *Publisher {
	client := resty.New().
		SetBaseURL(apiBaseURL).
		SetTimeout(30 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(2 * time.Second).
		SetAuthToken(token).
		SetHeader("Notion-Version", apiVersion).
		SetHeader("Content-Type", "application/json")

	return &Publisher{client: client, parentID: parentPageID}
}

type pageResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Publish converts the markdown, creates the page with the first block
// batch, and appends the remaining batches in order.
func (p *Publisher) Publish(ctx context.Context, title, markdown string) (*core.PublishResult, error) {
	batches := Batch(ConvertMarkdown(markdown))

	var first core.BlockBatch
	if len(batches) > 0 {
		first = batches[0]
	}

	result, err := p.createPage(ctx, title, first)
	if err != nil {
		return nil, err
	}

	if len(batches) > 1 {
		for i, batch := range batches[1:] {
			if err := p.appendBlocks(ctx, result.PageID, batch); err != nil {
				return nil, fmt.Errorf("appending batch %d of %d: %w", i+2, len(batches), err)
			}
		}
	}

	log.Info().
		Str("page_id", result.PageID).
		Int("batches", len(batches)).
		Msg("Published report page")

	return result, nil
}

func (p *Publisher) createPage(ctx context.Context, title string, children core.BlockBatch) (*core.PublishResult, error) {
	if len(children) > MaxBlocksPerBatch {
		return nil, fmt.Errorf("%w: %d blocks in one request (limit %d)", core.ErrSizeLimitExceeded, len(children), MaxBlocksPerBatch)
	}

	body := map[string]any{
		"parent": map[string]any{"page_id": p.parentID},
		"icon":   map[string]any{"type": "emoji", "emoji": "📊"},
		"properties": map[string]any{
			"title": map[string]any{
				"title": richTextOf(title),
			},
		},
	}
	if len(children) > 0 {
		body["children"] = batchPayload(children)
	}

	var page pageResponse
	var apiErr apiError
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&page).
		SetError(&apiErr).
		Post("/v1/pages")
	if err != nil {
		return nil, fmt.Errorf("%w: creating page: %v", core.ErrUpstreamFailure, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: creating page: %s (%s)", core.ErrUpstreamFailure, apiErr.Message, apiErr.Code)
	}

	return &core.PublishResult{PageID: page.ID, URL: page.URL}, nil
}

func (p *Publisher) appendBlocks(ctx context.Context, pageID string, batch core.BlockBatch) error {
	if len(batch) > MaxBlocksPerBatch {
		return fmt.Errorf("%w: %d blocks in one request (limit %d)", core.ErrSizeLimitExceeded, len(batch), MaxBlocksPerBatch)
	}

	var apiErr apiError
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(map[string]any{"children": batchPayload(batch)}).
		SetError(&apiErr).
		Patch("/v1/blocks/" + pageID + "/children")
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrUpstreamFailure, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: %s (%s)", core.ErrUpstreamFailure, apiErr.Message, apiErr.Code)
	}

	return nil
}

// Ping verifies the token and parent page are reachable.
func (p *Publisher) Ping(ctx context.Context) error {
	var apiErr apiError
	resp, err := p.client.R().
		SetContext(ctx).
		SetError(&apiErr).
		Get("/v1/pages/" + p.parentID)
	if err != nil {
		return fmt.Errorf("%w: reaching notion: %v", core.ErrUpstreamFailure, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: parent page check failed: %s (%s)", core.ErrUpstreamFailure, apiErr.Message, apiErr.Code)
	}
	return nil
}
