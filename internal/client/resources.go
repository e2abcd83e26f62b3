package client

import (
	"context"
	"fmt"

	"issuehub/internal/httpapi/dto"
	"issuehub/internal/httpapi/models"
)

// Issue and meeting calls used by the CLI resource commands.

func (c *APIClient) ListIssues(ctx context.Context, page, size int) (*dto.PaginatedIssueResponse, error) {
	var out dto.PaginatedIssueResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("page", fmt.Sprintf("%d", page)).
		SetQueryParam("size", fmt.Sprintf("%d", size)).
		SetResult(&out).
		Get("/api/issues")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("issue list failed with status: %s", resp.Status())
	}
	return &out, nil
}

func (c *APIClient) CreateIssue(ctx context.Context, req dto.CreateIssueRequest) (*models.Issue, error) {
	var out models.Issue
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post("/api/issues")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("issue creation failed with status: %s", resp.Status())
	}
	return &out, nil
}

func (c *APIClient) UpdateIssue(ctx context.Context, id int64, req dto.UpdateIssueRequest) (*models.Issue, error) {
	var out models.Issue
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Put(fmt.Sprintf("/api/issues/%d", id))
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("issue update failed with status: %s", resp.Status())
	}
	return &out, nil
}

func (c *APIClient) CreateComment(ctx context.Context, issueID int64, req dto.CreateCommentRequest) (*models.Comment, error) {
	var out models.Comment
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post(fmt.Sprintf("/api/issues/%d/comments", issueID))
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("comment creation failed with status: %s", resp.Status())
	}
	return &out, nil
}

func (c *APIClient) ListMeetings(ctx context.Context) ([]models.Meeting, error) {
	var out []models.Meeting
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/api/meetings")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("meeting list failed with status: %s", resp.Status())
	}
	return out, nil
}

func (c *APIClient) CreateMeeting(ctx context.Context, req dto.CreateMeetingRequest) (*models.Meeting, error) {
	var out models.Meeting
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post("/api/meetings")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("meeting creation failed with status: %s", resp.Status())
	}
	return &out, nil
}
